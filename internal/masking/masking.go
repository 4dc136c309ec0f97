// Package masking redacts personal and financial identifiers for display and logs.
//
// Every function is pure and total: any input, including empty or malformed values, yields
// a masked string. Lengths are counted in characters, not bytes.
package masking

import (
	"fmt"
	"strings"

	"github.com/allisson/fieldvault/internal/errors"
)

// Kind names a masking rule.
type Kind string

const (
	KindNINumber      Kind = "ni_number"
	KindPAYEReference Kind = "paye_reference"
	KindEmail         Kind = "email"
	KindPhone         Kind = "phone"
	KindBankAccount   Kind = "bank_account"
	KindSortCode      Kind = "sort_code"
	KindIPAddress     Kind = "ip_address"
	KindAddress       Kind = "address"
	KindDateOfBirth   Kind = "date_of_birth"
)

// Kinds lists every supported rule.
var Kinds = []Kind{
	KindNINumber,
	KindPAYEReference,
	KindEmail,
	KindPhone,
	KindBankAccount,
	KindSortCode,
	KindIPAddress,
	KindAddress,
	KindDateOfBirth,
}

// ErrUnknownMaskKind is returned by Mask for a kind not in Kinds.
var ErrUnknownMaskKind = errors.Wrap(errors.ErrInvalidInput, "unknown mask kind")

var maskers = map[Kind]func(string) string{
	KindNINumber:      NINumber,
	KindPAYEReference: PAYEReference,
	KindEmail:         Email,
	KindPhone:         Phone,
	KindBankAccount:   BankAccount,
	KindSortCode:      SortCode,
	KindIPAddress:     IPAddress,
	KindAddress:       Address,
	KindDateOfBirth:   DateOfBirth,
}

// Mask applies the rule named by kind.
func Mask(kind Kind, value string) (string, error) {
	fn, ok := maskers[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMaskKind, kind)
	}
	return fn(value), nil
}

func head(r []rune, n int) string {
	return string(r[:min(n, len(r))])
}

func tail(r []rune, n int) string {
	return string(r[max(len(r)-n, 0):])
}

// NINumber keeps the first two and last three characters: AB123456C becomes AB****56C.
func NINumber(value string) string {
	r := []rune(value)
	if len(r) < 9 {
		return "***"
	}
	return string(r[:2]) + "****" + string(r[6:])
}

// PAYEReference keeps the tax office prefix and the last two characters:
// 123/AB45678 becomes 123/***78.
func PAYEReference(value string) string {
	r := []rune(value)
	if len(r) < 4 {
		return "***"
	}
	prefix, _, found := strings.Cut(value, "/")
	if !found {
		return head(r, 3) + "***"
	}
	return prefix + "/***" + tail(r, 2)
}

// Email keeps the first and last character of the local part and the whole domain.
func Email(value string) string {
	local, domain, found := strings.Cut(value, "@")
	if !found {
		return "***"
	}
	r := []rune(local)
	if len(r) <= 2 {
		return "***@" + domain
	}
	return string(r[0]) + "***" + string(r[len(r)-1]) + "@" + domain
}

// Phone keeps the first two and last four characters.
func Phone(value string) string {
	r := []rune(value)
	if len(r) < 6 {
		return "***"
	}
	return head(r, 2) + "***" + tail(r, 4)
}

// BankAccount keeps the last four digits.
func BankAccount(value string) string {
	r := []rune(value)
	if len(r) < 4 {
		return "****"
	}
	return "****" + tail(r, 4)
}

// SortCode keeps the last two digits.
func SortCode(value string) string {
	r := []rune(value)
	if len(r) < 2 {
		return "**-**-**"
	}
	return "**-**-" + tail(r, 2)
}

// IPAddress keeps the network half of an IPv4 address. Anything that is not four
// dot-separated parts is truncated to ten characters.
func IPAddress(value string) string {
	parts := strings.Split(value, ".")
	if len(parts) != 4 {
		return head([]rune(value), 10) + "..."
	}
	return parts[0] + "." + parts[1] + ".xxx.xxx"
}

// Address reduces a comma-separated address to its city and postcode area:
// "1 High St, Leeds, LS1 4AB" becomes "Leeds, LS1".
func Address(value string) string {
	parts := strings.Split(value, ",")
	if len(parts) < 2 {
		return "***"
	}
	city := strings.TrimSpace(parts[len(parts)-2])
	postcode := strings.TrimSpace(parts[len(parts)-1])
	area, _, _ := strings.Cut(postcode, " ")
	return city + ", " + area
}

// DateOfBirth keeps the year: 1990-05-17 becomes 1990-**-**.
func DateOfBirth(value string) string {
	r := []rune(value)
	if len(r) < 4 {
		return "****-**-**"
	}
	return string(r[:4]) + "-**-**"
}
