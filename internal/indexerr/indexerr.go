// Package indexerr defines the error kinds returned by discovery and hashing.
// Each error keeps a human-readable message (the text callers print) and,
// when there is one, the underlying OS or parser error.
package indexerr

import "errors"

// Kind classifies a failure. The set is closed.
type Kind int

const (
	// KindPattern means the glob pattern could not be parsed.
	KindPattern Kind = iota + 1
	// KindTraversal means the filesystem failed while enumerating matches.
	KindTraversal
	// KindNotFound means the file to hash did not exist at call time.
	KindNotFound
	// KindRead means the file existed but reading (or decoding) it failed.
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindTraversal:
		return "traversal"
	case KindNotFound:
		return "not_found"
	case KindRead:
		return "read"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Path is the offending path or pattern.
type Error struct {
	Kind Kind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind that carries no message, so the
// sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrPattern   = &Error{Kind: KindPattern}
	ErrTraversal = &Error{Kind: KindTraversal}
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrRead      = &Error{Kind: KindRead}
)

// KindOf returns the Kind of the first *Error in err's chain, or 0 when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// New builds an *Error.
func New(kind Kind, path, msg string, err error) *Error {
	return &Error{Kind: kind, Path: path, Msg: msg, Err: err}
}
