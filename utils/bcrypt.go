package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a registration or reset password at the default cost.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// ComparePassword checks a login or account-deletion attempt against the
// stored hash. A mismatch returns bcrypt.ErrMismatchedHashAndPassword.
func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
