package formats

import (
	"errors"
	"fmt"
)

// ErrorKind classifies malformed bencode. Kinds are errors themselves, so
// errors.Is(err, OddEntryCount) works on anything the decoder returns.
type ErrorKind uint8

const (
	MalformedLength ErrorKind = iota + 1
	MalformedInteger
	LengthOverflow
	IntegerOverflow
	UnterminatedContainer
	TruncatedByteString
	OddEntryCount
	UnexpectedToken
	InvalidKey
	DepthExceeded
)

var kindNames = [...]string{
	MalformedLength:       "malformed length",
	MalformedInteger:      "malformed integer",
	LengthOverflow:        "length overflow",
	IntegerOverflow:       "integer overflow",
	UnterminatedContainer: "unterminated container",
	TruncatedByteString:   "truncated byte string",
	OddEntryCount:         "dictionary key without a value",
	UnexpectedToken:       "unexpected token",
	InvalidKey:            "dictionary key is not a scalar",
	DepthExceeded:         "nesting too deep",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

func (k ErrorKind) Error() string {
	return "bencode: " + k.String()
}

// ErrIncomplete is not a failure: the bytes available so far are not enough
// to decide. Append more input and call the same operation again with the same cursor.
var ErrIncomplete = errors.New("bencode: incomplete input")

// SyntaxError is a decode failure. Offset is the position in the caller's
// buffer, or -1 when the error came straight from a lexer that only saw a cursor.
type SyntaxError struct {
	Kind   ErrorKind
	Offset int64

	// unconsumed bytes at the point of failure
	rem int
}

func (e *SyntaxError) Error() string {
	if e.Offset < 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("bencode: %s at offset %d", e.Kind.String(), e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// IncompleteError is what the decoder actually returns for ErrIncomplete. It
// remembers which error the shortage turns into once no more input can come.
type IncompleteError struct {
	Kind ErrorKind
	rem  int
}

func (e *IncompleteError) Error() string {
	return ErrIncomplete.Error()
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

func syntaxErr(kind ErrorKind, at []byte) error {
	return &SyntaxError{Kind: kind, Offset: -1, rem: len(at)}
}

func incomplete(kind ErrorKind, at []byte) error {
	return &IncompleteError{Kind: kind, rem: len(at)}
}

// Final is for callers that have declared the buffer complete: an
// outstanding ErrIncomplete becomes the SyntaxError it stands for. Other
// errors pass through untouched.
func Final(err error) error {
	var ie *IncompleteError
	if errors.As(err, &ie) {
		return &SyntaxError{Kind: ie.Kind, Offset: -1, rem: ie.rem}
	}
	return err
}

// Locate fills in the Offset of a SyntaxError produced while decoding a
// buffer of length n. The error must have come from a cursor into that buffer.
func Locate(err error, n int) error {
	return locate(err, n, 0)
}

func locate(err error, n int, base int64) error {
	var se *SyntaxError
	if !errors.As(err, &se) || se.Offset >= 0 {
		return err
	}
	located := *se
	located.Offset = base + int64(n-se.rem)
	return &located
}
