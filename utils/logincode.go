package utils

import (
	"context"
	"fmt"
	"math/rand"
)

const (
	loginCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	loginCodeDigits  = "0123456789"

	// MaxLoginCodeAttempts bounds the uniqueness retry loop. At 52^5*10^3
	// possible codes a handful of attempts is always enough in practice.
	MaxLoginCodeAttempts = 10
)

// LoginCodeExistsFunc reports whether a candidate login code is already taken.
type LoginCodeExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateLoginCode produces a human-readable login code of five letters
// followed by three digits, retrying on collision up to MaxLoginCodeAttempts.
func GenerateLoginCode(ctx context.Context, exists LoginCodeExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxLoginCodeAttempts; attempt++ {
		code := randomLoginCode()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unused login code found after %d attempts", MaxLoginCodeAttempts)
}

func randomLoginCode() string {
	buf := make([]byte, 0, 8)
	for i := 0; i < 5; i++ {
		buf = append(buf, loginCodeLetters[rand.Intn(len(loginCodeLetters))])
	}
	for i := 0; i < 3; i++ {
		buf = append(buf, loginCodeDigits[rand.Intn(len(loginCodeDigits))])
	}
	return string(buf)
}
