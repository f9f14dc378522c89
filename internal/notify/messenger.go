// Package notify delivers customer reminders through a messaging provider.
package notify

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// ErrRejected marks provider failures that will not succeed on retry, such
// as an invalid recipient or an unapproved template.
var ErrRejected = errors.New("notify: message rejected by provider")

// TemplateMessage is a pre-approved provider template with positional
// body parameters.
type TemplateMessage struct {
	To       string
	Template string
	Language string
	Params   []string
}

// Messenger sends template messages and returns the provider message id.
type Messenger interface {
	SendTemplate(ctx context.Context, msg TemplateMessage) (string, error)
}

// NormalizePhone reduces a stored phone number to digits with a country
// code. Ten-digit numbers are treated as Indian mobiles.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	digits = strings.TrimLeft(digits, "0")
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}
