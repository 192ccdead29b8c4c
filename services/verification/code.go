package verification

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/argon2"
)

const (
	codeDigits = 6
	saltBytes  = 16
)

var codeSpace = big.NewInt(1_000_000)

// newCode draws a uniformly random 6-digit code, keeping leading zeros.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

func newSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// digestCode hashes a code with argon2id. Parameters are small because codes
// live for minutes and are checked once.
func digestCode(code, salt string) string {
	key := argon2.IDKey([]byte(code), []byte(salt), 1, 8*1024, 1, 32)
	return hex.EncodeToString(key)
}
