package ir

import (
	"fmt"
	"strings"
)

// ActionRef is a typed reference to a concept action.
// Format: "Concept.action".
type ActionRef string

// QueryRef is a typed reference to a concept query.
// Format: "Concept.query".
type QueryRef string

// Split returns the concept and action names of a ref.
func (r ActionRef) Split() (concept, action string, err error) {
	return splitRef(string(r))
}

// Split returns the concept and query names of a ref.
func (r QueryRef) Split() (concept, query string, err error) {
	return splitRef(string(r))
}

func splitRef(s string) (string, string, error) {
	i := strings.IndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("malformed ref %q: want \"Concept.name\"", s)
	}
	return s[:i], s[i+1:], nil
}
