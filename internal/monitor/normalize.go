package monitor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Profile selects which optional passes the normalizer applies.
//
// Two profiles are in use: queryProfile ("loose") feeds search queries and
// keeps collaborator lists intact; compareProfile ("strict") additionally
// strips collaborators so equality and similarity comparisons line up on
// the primary artist.
type Profile struct {
	StripBracketed bool // bracketed/parenthesized spans and " - " suffixes
	StripListed    bool // "& ..." and ", ..." collaborator continuations
	StripSpaces    bool
}

var (
	queryProfile   = Profile{StripBracketed: true}
	compareProfile = Profile{StripBracketed: true, StripListed: true}
)

var (
	reBracketed  = regexp.MustCompile(`[\[\(].+[\]\)]`)
	reDashSuffix = regexp.MustCompile(` - .+$`)
	reAmpersand  = regexp.MustCompile(` & .+$`)
	reListComma  = regexp.MustCompile(`, .+$`)
	reFeature    = regexp.MustCompile(`feat\. .+$`)
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9 ]`)
)

// normalize reduces an artist or track name to its essential components for
// search compatibility and comparison. It is deterministic and idempotent
// for a given profile.
func normalize(s string, p Profile) string {
	out := asciiFold(s)
	out = strings.ToLower(out)
	if p.StripBracketed {
		out = reBracketed.ReplaceAllString(out, "")
		out = reDashSuffix.ReplaceAllString(out, "")
	}
	if p.StripListed {
		out = reAmpersand.ReplaceAllString(out, "")
		out = reListComma.ReplaceAllString(out, "")
	}
	out = reFeature.ReplaceAllString(out, "")
	out = reNonAlnum.ReplaceAllString(out, "")
	if p.StripSpaces {
		out = strings.ReplaceAll(out, " ", "")
	}
	return out
}

// asciiFold decomposes the string (NFKD), drops combining marks, and keeps
// only ASCII — "Beyoncé" becomes "Beyonce", characters with no ASCII
// decomposition are dropped.
func asciiFold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
