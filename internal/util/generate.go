package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

func HashSHA256(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// ParseTags turns "travel, food ,  sea" into [travel food sea]. Spaces are
// removed everywhere and empty entries are dropped.
func ParseTags(raw string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	tags := []string{}
	for _, tag := range strings.Split(stripped, ",") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// GenerateInitials returns up to two uppercase initials of name.
func GenerateInitials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}

	return string(initials)
}
