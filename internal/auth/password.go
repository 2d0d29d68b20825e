package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor for new password hashes.
const DefaultBcryptCost = 12

func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultBcryptCost)
}

func HashPasswordCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
