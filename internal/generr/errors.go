package generr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrStructural indicates a missing required field or a version mismatch.
	ErrStructural = errors.New("structural error")

	// ErrSyntax indicates malformed reaction-side or count expression text.
	ErrSyntax = errors.New("syntax error")

	// ErrSemantic indicates an identifier that cannot be resolved or bound.
	ErrSemantic = errors.New("semantic error")

	// ErrIO indicates an output unit could not be written.
	ErrIO = errors.New("io error")
)

// Error wraps an error with the location in the data model it relates to.
type Error struct {
	Kind error
	// Path is the dotted data model path, e.g. "mcell.define_reactions.reaction_list[2]".
	Path string
	// Item names the construct being translated, if any.
	Item    string
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		if msg == "" {
			msg = e.Wrapped.Error()
		} else {
			msg = msg + ": " + e.Wrapped.Error()
		}
	}
	switch {
	case e.Path != "" && e.Item != "":
		return fmt.Sprintf("%s: %s (%s): %s", e.Kind, e.Path, e.Item, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, msg)
	case e.Item != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Item, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Structural returns an ErrStructural error located at path.
func Structural(path, format string, args ...any) *Error {
	return &Error{Kind: ErrStructural, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Syntax returns an ErrSyntax error for the given construct.
func Syntax(item, format string, args ...any) *Error {
	return &Error{Kind: ErrSyntax, Item: item, Message: fmt.Sprintf(format, args...)}
}

// Semantic returns an ErrSemantic error for the given construct.
func Semantic(item, format string, args ...any) *Error {
	return &Error{Kind: ErrSemantic, Item: item, Message: fmt.Sprintf(format, args...)}
}

// IO wraps err as an ErrIO error for the given output path.
func IO(path string, err error) *Error {
	return &Error{Kind: ErrIO, Path: path, Wrapped: err}
}

// WithItem attaches the construct name to err when it is an *Error without
// one. Other errors are wrapped as-is.
func WithItem(err error, item string) error {
	var ge *Error
	if errors.As(err, &ge) {
		if ge.Item == "" {
			cp := *ge
			cp.Item = item
			return &cp
		}
		return err
	}
	return fmt.Errorf("%s: %w", item, err)
}
