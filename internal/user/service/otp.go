package service

import (
	"crypto/rand"
	"math/big"
)

const (
	otpLength   = 6
	otpAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// generateOTP returns a random code drawn uniformly from otpAlphabet.
func generateOTP() (string, error) {
	max := big.NewInt(int64(len(otpAlphabet)))
	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = otpAlphabet[n.Int64()]
	}
	return string(code), nil
}
