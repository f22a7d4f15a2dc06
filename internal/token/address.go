package token

import (
	"fmt"
	"regexp"
	"strings"
)

// Address identifies a ledger account: "0x" followed by 40 hex characters,
// stored lowercase.
type Address string

// ZeroAddress is the null account. It is never a valid owner, recipient,
// or tax sink; renounced ownership points here.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// ParseAddress normalizes and validates an address string.
func ParseAddress(s string) (Address, error) {
	a := Address(strings.ToLower(s))
	if !a.Valid() {
		return "", &Error{
			Code:    ErrCodeInvalidAddress,
			Message: fmt.Sprintf("malformed address %q", s),
		}
	}
	return a, nil
}

// Valid reports whether the address is well-formed. The zero address is
// well-formed; callers needing a live account must also check IsZero.
func (a Address) Valid() bool {
	return addressPattern.MatchString(string(a))
}

// IsZero reports whether the address is empty or the zero address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}
