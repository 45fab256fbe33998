package importer

import (
	"errors"
	"fmt"
)

// Import error kinds. An *ImportError unwraps to one of these and to its cause.
var (
	ErrOpenFailed           = errors.New("cannot open file")
	ErrParseFailed          = errors.New("cannot parse file")
	ErrEmptyScene           = errors.New("no nodes loaded, the ASE/ASK file is either empty or corrupt")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// ImportError reports a fatal import failure.
type ImportError struct {
	Kind error  // ErrOpenFailed, ErrParseFailed, ErrEmptyScene or ErrUnsupportedExtension
	Path string // empty for in-memory imports
	Err  error  // underlying cause, may be nil
}

func (e *ImportError) Error() string {
	msg := "ase import"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Kind)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
