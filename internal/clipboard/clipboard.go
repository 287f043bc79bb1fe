// Package clipboard writes exported text to the system clipboard.
// Writes are best effort: callers report success and carry on after a
// failure.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when the platform has no clipboard utility.
var ErrUnsupported = errors.New("clipboard is not available on this system")

// Writer writes text to a clipboard.
type Writer interface {
	Write(text string) error
}

// System is the Writer for the OS clipboard.
type System struct{}

// Write copies text to the OS clipboard.
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Func adapts a function to the Writer interface.
type Func func(text string) error

// Write calls f(text).
func (f Func) Write(text string) error {
	return f(text)
}

// Copy writes text with w and reports whether the write succeeded. A nil
// Writer never succeeds.
func Copy(w Writer, text string) (bool, error) {
	if w == nil {
		return false, ErrUnsupported
	}
	if err := w.Write(text); err != nil {
		return false, err
	}
	return true, nil
}
