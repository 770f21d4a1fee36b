// Package validation holds the pure field checks run before any mutation is
// attempted. No function here has side effects.
package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxPostContentLen = 500
	MinUsernameLen    = 3
	MaxUsernameLen    = 20
	MinPasswordLen    = 6
)

var (
	ErrEmptyContent    = errors.New("content must not be empty")
	ErrContentTooLong  = errors.New("content must be at most 500 characters")
	ErrEmptyField      = errors.New("field is required")
	ErrUsernameLength  = errors.New("username must be between 3 and 20 characters")
	ErrUsernameCharset = errors.New("username may only contain letters, digits and underscores")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

// PostContent checks the 1-500 character post body constraint. Length is
// counted in characters, not bytes.
func PostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxPostContentLen {
		return ErrContentTooLong
	}
	return nil
}

// CommentContent only rejects empty text; comments have no upper bound.
func CommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Required rejects empty or whitespace-only values.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrEmptyField
	}
	return nil
}

// Username enforces the identity collaborator's username rules.
func Username(username string) error {
	if err := Required(username); err != nil {
		return err
	}
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return ErrUsernameLength
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return ErrUsernameCharset
		}
	}
	return nil
}

// Password enforces the identity collaborator's password rules.
func Password(password string) error {
	if err := Required(password); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return ErrPasswordTooWeak
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	default:
		return false
	}
}
