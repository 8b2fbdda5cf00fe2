package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost matches the hashes already stored for back-office accounts.
const passwordCost = 10

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is empty", ErrInvalidRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidRequest)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordMatches reports whether plain hashes to hashed. A malformed hash
// never matches.
func PasswordMatches(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// OnlyDigits strips formatting from CPF/CNPJ and phone numbers.
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
