package roadmap

import (
	"strings"
)

var apostropheReplacer = strings.NewReplacer(
	"'", "",
	"’", "",
	"‘", "",
	"&", " and ",
)

// Slugify converts a label into a lowercase, hyphenated, URL safe identifier.
//
// The result takes part in the composite key sent upstream, so it must stay
// byte stable: same input, same output.
func Slugify(label string) string {
	s := apostropheReplacer.Replace(strings.ToLower(strings.TrimSpace(label)))

	var b strings.Builder
	b.Grow(len(s))

	lastWasDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any run outside [a-z0-9] becomes a single dash
			if !lastWasDash {
				b.WriteByte('-')
				lastWasDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
