package service

import (
	"crypto/rand"
	"math/big"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	numberChars  = "0123456789"
	specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// generatePassword returns a password with at least one character of every enabled
// class. params must be normalized.
func generatePassword(params *credentialDomain.GenerationParameters) (string, error) {
	var classes []string
	if !params.ExcludeUpper {
		classes = append(classes, upperChars)
	}
	if !params.ExcludeLower {
		classes = append(classes, lowerChars)
	}
	if !params.ExcludeNumber {
		classes = append(classes, numberChars)
	}
	if params.IncludeSpecial {
		classes = append(classes, specialChars)
	}

	var all string
	for _, class := range classes {
		all += class
	}

	password := make([]byte, params.Length)
	for i := range password {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		password[i] = c
	}

	if err := shuffle(password); err != nil {
		return "", err
	}
	return string(password), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		b[i], b[j.Int64()] = b[j.Int64()], b[i]
	}
	return nil
}
