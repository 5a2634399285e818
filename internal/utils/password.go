package utils

import "golang.org/x/crypto/bcrypt"

// MinHashCost is the floor for the bcrypt work factor. Stored digests
// must resist offline brute force, so configs asking for less are
// raised to this value.
const MinHashCost = 10

// HashPassword returns a salted bcrypt hash of the plaintext using the
// given cost, clamped to MinHashCost. Two calls with the same plaintext
// produce different digests.
func HashPassword(plain string, cost int) (string, error) {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
