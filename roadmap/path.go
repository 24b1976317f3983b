package roadmap

import "strings"

// ParsePath splits an index entry text into its trimmed labels
func ParsePath(text string) []string {
	parts := strings.Split(text, PathSeparator)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
