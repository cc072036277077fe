// SPDX-License-Identifier: MPL-2.0

package secure

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MaskToken replaces every masked password substring in a string.
const MaskToken = "***MASKED***"

const (
	minPasswordLength = 8

	lowerAlphabet  = "abcdefghijklmnopqrstuvwxyz"
	upperAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitAlphabet  = "0123456789"
	symbolAlphabet = "!@#$%^&*()-_=+"
	fullAlphabet   = lowerAlphabet + upperAlphabet + digitAlphabet + symbolAlphabet
)

// ErrInvalidPasswordLength is the sentinel error wrapped by InvalidPasswordLengthError.
var ErrInvalidPasswordLength = errors.New("invalid password length")

// InvalidPasswordLengthError is returned by GeneratePassword when length is
// below the minimum length ValidatePassword accepts (8).
type InvalidPasswordLengthError struct {
	Requested int
}

func (e *InvalidPasswordLengthError) Error() string {
	return fmt.Sprintf("password length %d is too small (minimum %d)", e.Requested, minPasswordLength)
}

// Unwrap returns ErrInvalidPasswordLength for errors.Is() compatibility.
func (e *InvalidPasswordLengthError) Unwrap() error { return ErrInvalidPasswordLength }

// ValidationResult is the outcome of validating a candidate password.
type ValidationResult struct {
	IsValid bool
	Issues  []string
}

// MaskPassword replaces every occurrence of password in text with MaskToken.
// If password is empty, text is returned unchanged — an empty needle would
// otherwise match (and corrupt) every position in text.
func MaskPassword(text, password string) string {
	if password == "" {
		return text
	}
	return strings.ReplaceAll(text, password, MaskToken)
}

// ValidatePassword checks password against the strength policy: minimum
// length, and presence of uppercase, lowercase, digit, and symbol classes.
// The returned Issues slice is empty iff IsValid is true.
func ValidatePassword(password string) ValidationResult {
	var issues []string

	if len(password) < minPasswordLength {
		issues = append(issues, "Password should be at least 8 characters long")
	}
	if !strings.ContainsAny(password, upperAlphabet) {
		issues = append(issues, "Password should contain at least one uppercase letter")
	}
	if !strings.ContainsAny(password, lowerAlphabet) {
		issues = append(issues, "Password should contain at least one lowercase letter")
	}
	if !strings.ContainsAny(password, digitAlphabet) {
		issues = append(issues, "Password should contain at least one digit")
	}
	if !strings.ContainsAny(password, symbolAlphabet) {
		issues = append(issues, "Password should contain at least one symbol")
	}

	return ValidationResult{IsValid: len(issues) == 0, Issues: issues}
}

// GeneratePassword returns a cryptographically random password of exactly
// length characters, guaranteed to contain at least one character from each
// of the four classes checked by ValidatePassword.
func GeneratePassword(length int) (string, error) {
	if length < minPasswordLength {
		return "", &InvalidPasswordLengthError{Requested: length}
	}

	chars := make([]byte, length)
	classes := []string{lowerAlphabet, upperAlphabet, digitAlphabet, symbolAlphabet}
	for i, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars[i] = c
	}
	for i := len(classes); i < length; i++ {
		c, err := randomChar(fullAlphabet)
		if err != nil {
			return "", err
		}
		chars[i] = c
	}

	if err := shuffle(chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, fmt.Errorf("generate password: %w", err)
	}
	return alphabet[n.Int64()], nil
}

// shuffle performs a Fisher-Yates shuffle using crypto/rand so the
// guaranteed-class characters aren't predictably placed at the front.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle password: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
