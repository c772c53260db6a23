package security

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestTOTPGenerateAndValidate(t *testing.T) {
	secret, err := GenerateTOTPSecret("mockforge", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret: %v", err)
	}
	if secret == "" {
		t.Fatal("empty secret")
	}
	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if !ValidateTOTP(code, secret) {
		t.Error("freshly generated code should validate")
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if ValidateTOTP(wrong, secret) {
		t.Error("arbitrary code should not validate")
	}
}
