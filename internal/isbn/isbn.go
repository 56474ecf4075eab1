package isbn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned for identifiers that are not a 13-digit ISBN
var ErrInvalid = errors.New("invalid identifier")

// Clean removes hyphens and surrounding whitespace
func Clean(isbn string) string {
	isbn = strings.TrimSpace(isbn)
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(isbn, " ", "")
}

// Validate checks that isbn is 13 digits with a correct check digit
func Validate(isbn string) error {
	if len(isbn) != 13 {
		return fmt.Errorf("%w: %q must have 13 digits", ErrInvalid, isbn)
	}
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q contains non-digit %q", ErrInvalid, isbn, r)
		}
		d := int(r - '0')
		if i == 12 {
			if (10-sum%10)%10 != d {
				return fmt.Errorf("%w: %q has a bad check digit", ErrInvalid, isbn)
			}
			break
		}
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return nil
}

// ToISBN10 converts a 978-prefixed ISBN-13 into its ISBN-10 form.
// Retail product pages are keyed by the 10-character form.
func ToISBN10(isbn13 string) (string, error) {
	if err := Validate(isbn13); err != nil {
		return "", err
	}
	if !strings.HasPrefix(isbn13, "978") {
		return "", fmt.Errorf("%w: %q has no ISBN-10 form", ErrInvalid, isbn13)
	}
	body := isbn13[3:12]
	sum := 0
	for i, r := range body {
		sum += (10 - i) * int(r-'0')
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return body + "X", nil
	}
	return body + string(rune('0'+check)), nil
}
