// Package auth checks request credentials against a static set of
// authorized keys.
package auth

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
)

// KeySet is an immutable set of authorized keys.
type KeySet struct {
	keys map[string]struct{}
}

// NewKeySet returns a KeySet containing keys.  Empty keys are ignored.
func NewKeySet(keys ...string) *KeySet {
	s := &KeySet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if k != "" {
			s.keys[k] = struct{}{}
		}
	}
	return s
}

// LoadFile reads one key per line from path.  Blank lines are skipped and
// lines are otherwise taken verbatim.  An empty path yields an empty set.
func LoadFile(path string) (*KeySet, error) {
	if path == "" {
		return NewKeySet(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open auth file: %w", err)
	}
	defer f.Close()

	var keys []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		keys = append(keys, trimCR(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read auth file: %w", err)
	}

	return NewKeySet(keys...), nil
}

// Len returns the number of keys.
func (s *KeySet) Len() int {
	return len(s.keys)
}

// IsAuthorized reports whether credential is in the set.
func (s *KeySet) IsAuthorized(credential string) bool {
	if s == nil || credential == "" {
		return false
	}
	_, ok := s.keys[credential]
	return ok
}

// Credential extracts the raw Authorization header value.  It reports false
// when the header is missing or is not visible ASCII.
func Credential(h http.Header) (string, bool) {
	values := h.Values("Authorization")
	if len(values) == 0 {
		return "", false
	}

	v := values[0]
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c != '\t' && (c < ' ' || c > '~') {
			return "", false
		}
	}
	return v, true
}

func trimCR(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
