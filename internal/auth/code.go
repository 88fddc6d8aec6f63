package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// codeBytes is the entropy of a confirmation code before hex encoding.
const codeBytes = 20

// GenerateConfirmationCode returns a fresh random hex code. Called once per
// issuance, never cached.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashCode creates a bcrypt hash of a confirmation code for storage.
// Only the hash is persisted, the plaintext goes out by mail.
func HashCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyCode checks a presented code against the stored bcrypt hash.
func VerifyCode(hashedCode, providedCode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
