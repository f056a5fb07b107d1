package schema

// email.go - derivation of contact addresses from a row's own name fields.
// The seed builder and the repair engine must agree on this transform, so
// it lives next to the rule declaration.

import (
	"fmt"
	"strings"
)

// NormalizeNamePart lowercases a name and strips everything that is not
// an ASCII letter. Empty results fall back to "user" so the local part is
// never empty.
func NormalizeNamePart(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// LocalPart builds the address local part from normalized name fields plus
// an optional numeric disambiguator.
func (r *EmailRule) LocalPart(first, last, suffix string) string {
	return NormalizeNamePart(first) + "." + NormalizeNamePart(last) + suffix
}

// Address builds the full derived address.
func (r *EmailRule) Address(first, last, suffix string) string {
	return fmt.Sprintf("%s@%s", r.LocalPart(first, last, suffix), r.Domain)
}

// NumericSuffix extracts the trailing digit run of an address's local
// part, so a repair pass can re-derive the address while keeping the
// stored disambiguator. Returns "" when there is none.
func NumericSuffix(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	i := len(local)
	for i > 0 && local[i-1] >= '0' && local[i-1] <= '9' {
		i--
	}
	return local[i:]
}
