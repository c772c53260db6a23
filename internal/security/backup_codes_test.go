package security

import "testing"

func TestGenerateBackupCodes(t *testing.T) {
	codes, hashes, err := GenerateBackupCodes(10)
	if err != nil {
		t.Fatalf("GenerateBackupCodes: %v", err)
	}
	if len(codes) != 10 || len(hashes) != 10 {
		t.Fatalf("got %d codes, %d hashes", len(codes), len(hashes))
	}
	for i, c := range codes {
		if len(c) != backupCodeLen {
			t.Errorf("code %d has length %d", i, len(c))
		}
		if HashBackupCode(c) != hashes[i] {
			t.Errorf("hash %d does not match its code", i)
		}
	}
}

func TestConsumeBackupCodeSingleUse(t *testing.T) {
	codes, hashes, err := GenerateBackupCodes(3)
	if err != nil {
		t.Fatal(err)
	}
	remaining, ok := ConsumeBackupCode(hashes, codes[1])
	if !ok {
		t.Fatal("valid code should consume")
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d, want 2", len(remaining))
	}
	// Same code again against the remaining set must fail.
	if _, ok := ConsumeBackupCode(remaining, codes[1]); ok {
		t.Error("consumed code validated a second time")
	}
	if _, ok := ConsumeBackupCode(remaining, codes[0]); !ok {
		t.Error("untouched code should still validate")
	}
}

func TestConsumeBackupCodeUnknown(t *testing.T) {
	_, hashes, err := GenerateBackupCodes(2)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := ConsumeBackupCode(hashes, "0000000000")
	if ok {
		t.Error("unknown code must not consume")
	}
	if len(out) != 2 {
		t.Errorf("hash set changed on failed consume: %d", len(out))
	}
}
