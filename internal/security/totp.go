package security

import (
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a new TOTP secret for the given account.
// Returns the base32 secret the client enrolls with.
func GenerateTOTPSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// ValidateTOTP reports whether code is currently valid for the secret.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
