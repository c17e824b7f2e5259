package helpers

import (
	"crypto/rand"
	"strconv"
)

// GenVerificationCode generates a random 6-digit verification code in the
// inclusive range [100000, 999999].
func GenVerificationCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	code := 100000 + int(n%900000)
	return strconv.Itoa(code), nil
}
