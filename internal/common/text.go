package common

import "strings"

// Blank reports whether any of values is empty once surrounding white space
// is trimmed. Server presence checks and CLI prompts both go through it.
func Blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
