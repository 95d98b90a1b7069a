// Package validation carries rejected-input outcomes from binding and from the
// stores up to the HTTP layer, where they become 400 responses.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error lists one human-readable message per violated constraint.
type Error struct {
	Messages []string
}

func New(messages ...string) *Error {
	return &Error{Messages: messages}
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Messages reports the messages of the first *Error in err's chain.
func Messages(err error) ([]string, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Messages, true
	}

	return nil, false
}

const (
	MsgEmailTaken   = "The email address you entered already exists"
	MsgUnknownOwner = "The course owner does not exist"
)

// RequiredMsg is the message for a missing or empty field, shared by request
// binding and the stores' NOT NULL / CHECK constraints.
func RequiredMsg(field string) string {
	return fmt.Sprintf("%q is required", field)
}
