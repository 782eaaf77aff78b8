package trie

import (
	"strings"
	"unicode/utf8"
)

// SplitFunc splits a key into its first label and the remainder
type SplitFunc func(string) (label, rest string)

// SplitRune splits off the first character: "cat" -> ("c", "at")
func SplitRune(key string) (label, rest string) {
	if key == "" {
		return "", ""
	}

	_, size := utf8.DecodeRuneInString(key)

	return key[:size], key[size:]
}

// SplitPath splits off the first path segment: "a/b/c" -> ("a/", "b/c")
// The separator stays with the label so that "a/" is a prefix of "a/b".
func SplitPath(key string) (label, rest string) {
	idx := strings.IndexByte(key, '/')
	if idx == -1 {
		return key, ""
	}

	return key[:idx+1], key[idx+1:]
}
