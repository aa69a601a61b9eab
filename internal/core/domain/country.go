package domain

import "strings"

// CountryCode is an ISO-3166 alpha-2 code.
type CountryCode string

var countryNames = map[string]CountryCode{
	"kenya":    "KE",
	"tanzania": "TZ",
	"uganda":   "UG",
	"zambia":   "ZM",
	"zimbabwe": "ZW",
}

// ResolveCountry maps a free-text country name to its code. Unknown values are
// upper-cased and passed through so callers may send a code directly; the code
// is not checked here, phone validation fails closed on it instead.
func ResolveCountry(raw string) CountryCode {
	raw = strings.TrimSpace(raw)
	if code, ok := countryNames[strings.ToLower(raw)]; ok {
		return code
	}
	return CountryCode(strings.ToUpper(raw))
}

func (c CountryCode) String() string { return string(c) }
