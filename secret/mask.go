package secret

import (
	"fmt"
	"net/netip"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaskType represents a known data format with masking rules.
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskIP    MaskType = "ip"    // 192.168.1.100 -> 192.168.xxx.xxx
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
	MaskIBAN  MaskType = "iban"  // GB82WEST12345698765432 -> GB82**************5432
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// Masker applies content-aware masking.
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) string
}

// MaskFunc adapts a function to Masker.
type MaskFunc func(string) string

// Mask calls f(value).
func (f MaskFunc) Mask(value string) string { return f(value) }

var maskers = map[MaskType]MaskFunc{
	MaskSSN:   maskSSN,
	MaskEmail: maskEmail,
	MaskPhone: maskPhone,
	MaskCard:  maskCard,
	MaskIP:    maskIP,
	MaskUUID:  maskUUID,
	MaskIBAN:  maskIBAN,
	MaskName:  maskName,
}

// MaskerFor returns the built-in masker for mt.
func MaskerFor(mt MaskType) (Masker, error) {
	m, ok := maskers[mt]
	if !ok {
		return nil, fmt.Errorf("%w: mask type %q", ErrUnknownCapability, mt)
	}
	return m, nil
}

// stars masks every byte of s.
func stars(s string) string {
	return strings.Repeat("*", len(s))
}

// digitsOf returns only the digit characters from s.
func digitsOf(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// lastFour returns the last four digits of s, or false when s has fewer.
func lastFour(s string) (string, int, bool) {
	d := digitsOf(s)
	if len(d) < 4 {
		return "", len(d), false
	}
	return d[len(d)-4:], len(d), true
}

func maskSSN(value string) string {
	last, _, ok := lastFour(value)
	if !ok {
		return stars(value)
	}
	return "***-**-" + last
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return stars(value)
	}
	return value[:1] + "***" + value[at:]
}

func maskPhone(value string) string {
	last, n, ok := lastFour(value)
	switch {
	case !ok:
		return stars(value)
	case strings.HasPrefix(value, "(") && n >= 10:
		return "(***) ***-" + last
	case n >= 10:
		return "***-***-" + last
	}
	return "***-" + last
}

func maskCard(value string) string {
	last, n, ok := lastFour(value)
	if !ok {
		return stars(value)
	}
	var sep string
	switch {
	case strings.Contains(value, " "):
		sep = " "
	case strings.Contains(value, "-"):
		sep = "-"
	default:
		return strings.Repeat("*", n-4) + last
	}
	groups := make([]string, (n-4+3)/4, (n-4+3)/4+1)
	for i := range groups {
		groups[i] = "****"
	}
	return strings.Join(append(groups, last), sep)
}

// maskIP keeps the network half of an address: two octets of IPv4, four
// groups of IPv6 (printed in expanded form).
func maskIP(value string) string {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return stars(value)
	}
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.xxx.xxx", b[0], b[1])
	}
	groups := strings.Split(addr.StringExpanded(), ":")
	return strings.Join(groups[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
}

func maskUUID(value string) string {
	id, err := uuid.Parse(value)
	if err != nil {
		return stars(value)
	}
	return id.String()[:8] + "-****-****-****-************"
}

func maskIBAN(value string) string {
	if len(value) <= 8 {
		return stars(value)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

func maskName(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		runes := []rune(word)
		words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
	return strings.Join(words, " ")
}
