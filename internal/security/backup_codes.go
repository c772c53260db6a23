package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const backupCodeLen = 10

// GenerateBackupCodes returns n fresh backup codes and their hashes.
// The plain codes are shown to the user exactly once; only hashes are stored.
func GenerateBackupCodes(n int) (codes []string, hashes []string, err error) {
	codes = make([]string, 0, n)
	hashes = make([]string, 0, n)
	for i := 0; i < n; i++ {
		b := make([]byte, backupCodeLen)
		if _, err := rand.Read(b); err != nil {
			return nil, nil, err
		}
		code := make([]byte, backupCodeLen)
		for j := range b {
			code[j] = '0' + (b[j] % 10)
		}
		codes = append(codes, string(code))
		hashes = append(hashes, HashBackupCode(string(code)))
	}
	return codes, hashes, nil
}

// HashBackupCode returns the hex SHA-256 of a backup code.
func HashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// ConsumeBackupCode compares code against the stored hashes in constant time
// and, on a match, returns the remaining hashes with the consumed one
// removed. A consumed code never validates a second time because its hash is
// gone from the returned set.
func ConsumeBackupCode(hashes []string, code string) (remaining []string, ok bool) {
	want := HashBackupCode(code)
	idx := -1
	for i, h := range hashes {
		if subtle.ConstantTimeCompare([]byte(h), []byte(want)) == 1 && idx == -1 {
			idx = i
		}
	}
	if idx == -1 {
		return hashes, false
	}
	remaining = make([]string, 0, len(hashes)-1)
	remaining = append(remaining, hashes[:idx]...)
	remaining = append(remaining, hashes[idx+1:]...)
	return remaining, true
}
