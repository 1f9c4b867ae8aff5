package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuth          = errors.New("wrong email or password")
	ErrEmptyPassword = errors.New("refusing to set empty password")
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns ErrAuth if the password does not match the hash. An empty hash never matches.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrAuth
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrAuth
	}
	return nil
}
