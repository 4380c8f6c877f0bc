package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a user's password with the configured cost
// (BCRYPT_COST). The hash is what goes into users.password; the plaintext is
// never stored or logged.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash. The
// comparison is constant-time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
