package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PostReference is the human-readable identifier assigned to an approved
// journal entry, formatted "P<n>". Numbers are strictly increasing across all
// approvals and unique; gaps are allowed.
type PostReference string

// NewPostReference formats a counter value as a post reference.
func NewPostReference(n int64) PostReference {
	return PostReference("P" + strconv.FormatInt(n, 10))
}

// Number returns the numeric component of the reference.
func (p PostReference) Number() (int64, error) {
	s, ok := strings.CutPrefix(string(p), "P")
	if !ok {
		return 0, fmt.Errorf("malformed post reference %q", string(p))
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("malformed post reference %q", string(p))
	}
	return n, nil
}

func (p PostReference) String() string {
	return string(p)
}
