package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword salts and hashes a plaintext password. bcrypt generates a
// fresh random salt on every call, so two hashes of the same input differ.
func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
}

func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
