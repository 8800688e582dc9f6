// Package validate holds the pre-flight form checks performed before any
// network call: CPF check digits, phone shape, password confirmation.
package validate

import "errors"

var (
	ErrInvalidCPF       = errors.New("invalid CPF")
	ErrIncompletePhone  = errors.New("incomplete phone number")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password too short")
)

const minPasswordLength = 6

// CPF validates the Brazilian tax id check digits. Formatting characters
// (dots, dash) are ignored; an empty value is rejected.
func CPF(raw string) error {
	digits := make([]int, 0, 11)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-' || r == ' ':
		default:
			return ErrInvalidCPF
		}
	}
	if len(digits) != 11 {
		return ErrInvalidCPF
	}

	// All-same-digit sequences pass the checksum but are not valid documents.
	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return ErrInvalidCPF
	}

	if checkDigit(digits, 9) != digits[9] || checkDigit(digits, 10) != digits[10] {
		return ErrInvalidCPF
	}
	return nil
}

// checkDigit computes the verification digit over the first n digits.
func checkDigit(digits []int, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digits[i] * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// Phone requires a Brazilian number with area code: 10 or 11 digits after
// stripping formatting.
func Phone(raw string) error {
	count := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			count++
		case r == '(' || r == ')' || r == '-' || r == ' ' || r == '+':
		default:
			return ErrIncompletePhone
		}
	}
	if count < 10 || count > 13 {
		return ErrIncompletePhone
	}
	return nil
}

// Password checks length and confirmation match.
func Password(password, confirmation string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}
