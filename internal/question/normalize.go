package question

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Normalize trims, collapses internal whitespace runs to one space and
// lowercases s. Every answer comparison goes through it.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// KeyToIndex maps an option key letter to its position: A→0, B→1, …
// Keys are case-insensitive and may carry surrounding whitespace.
func KeyToIndex(key string) (int, error) {
	k := strings.TrimSpace(key)
	if len(k) != 1 {
		return -1, invalidOption("key_to_index", "option key must be a single letter, got %q", key)
	}
	c := k[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), nil
	}
	return -1, invalidOption("key_to_index", "option key must be a letter, got %q", key)
}

// IndexToKey is the inverse of KeyToIndex for indexes 0..25.
func IndexToKey(i int) string {
	if i < 0 || i > 25 {
		return ""
	}
	return string(rune('A' + i))
}

// optionIndex resolves a submitted userAnswer key against options, failing
// when it is out of range.
func optionIndex(key string, options []string) (int, error) {
	const op = "option_index"

	idx, err := KeyToIndex(key)
	if err != nil {
		return -1, &Error{Kind: InvalidArgument, Op: op, Field: "userAnswer", Msg: Message(err), Err: ErrInvalidOption}
	}
	if idx >= len(options) {
		return -1, &Error{
			Kind:  InvalidArgument,
			Op:    op,
			Field: "userAnswer",
			Msg:   fmt.Sprintf("option %q does not exist (question has %d options)", strings.ToUpper(strings.TrimSpace(key)), len(options)),
			Err:   ErrInvalidOption,
		}
	}
	return idx, nil
}

// isOptionKey reports whether s is a key letter addressing one of n options.
func isOptionKey(s string, n int) bool {
	idx, err := KeyToIndex(s)
	return err == nil && idx < n
}

// ParseID validates a client supplied question identifier.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalidField("parse_id", "id", "invalid question id %q", raw)
	}
	return id, nil
}
