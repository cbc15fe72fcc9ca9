package signals

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// confusables maps non-Latin letters that render like ASCII letters.
var confusables = map[rune]rune{
	// Cyrillic
	'а': 'a', 'в': 'b', 'с': 'c', 'е': 'e', 'һ': 'h', 'і': 'i', 'ј': 'j', 'к': 'k',
	'м': 'm', 'н': 'h', 'о': 'o', 'р': 'p', 'ԛ': 'q', 'ѕ': 's', 'т': 't', 'ц': 'u',
	'ѵ': 'v', 'ԝ': 'w', 'х': 'x', 'у': 'y', 'ӏ': 'l', 'ɡ': 'g',
	// Greek
	'α': 'a', 'β': 'b', 'ε': 'e', 'η': 'n', 'ι': 'i', 'κ': 'k', 'ν': 'v', 'ο': 'o',
	'ρ': 'p', 'τ': 't', 'υ': 'u', 'χ': 'x', 'γ': 'y',
	// Latin lookalikes
	'ı': 'i', 'ł': 'l', 'ø': 'o', 'đ': 'd', 'ħ': 'h',
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHomoglyphs returns the ASCII skeleton of host: punycode labels are
// decoded, compatibility forms folded (NFKC), diacritics removed and
// confusable letters mapped to their Latin lookalikes. A plain ASCII host
// is returned unchanged.
func NormalizeHomoglyphs(host string) string {
	host = strings.ToLower(host)
	if u, err := idna.ToUnicode(host); err == nil {
		host = u
	}
	host = norm.NFKC.String(host)
	if stripped, _, err := transform.String(stripMarks, host); err == nil {
		host = stripped
	}

	var b strings.Builder
	for _, r := range strings.ToLower(host) {
		if m, ok := confusables[r]; ok {
			r = m
		}
		b.WriteRune(r)
	}
	return b.String()
}
