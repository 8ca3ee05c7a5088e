//parsec is a mini parser combinator library over byte slices.
//A parser takes the unconsumed input and returns what is left of it, the thing it matched, and an error.
//Input is never copied: whatever a parser returns aliases the slice it was given.

package parsec

import (
	"errors"
)

//Parser is a basic parser function. On success `rest` is the input after the matched prefix.
//On failure `rest` is the input unchanged.
type Parser[T any] func(in []byte) (rest []byte, out T, err error)

//Predicate is a function that takes a byte and says whether it satisfies some condition
type Predicate func(b byte) bool

var (
	//ErrIncomplete means the input ended before the parser could decide. More input may make it succeed.
	ErrIncomplete = errors.New("parsec: not enough input")
	//ErrUnmatched means the input can never satisfy the parser, no matter what follows.
	ErrUnmatched = errors.New("parsec: unmatched")
)

func IsDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// Peek returns the next byte without consuming it
func Peek(in []byte) (byte, error) {
	if len(in) == 0 {
		return 0, ErrIncomplete
	}
	return in[0], nil
}

// Tag is the simplest parser, it checks that the next byte is c
func Tag(c byte) Parser[byte] {
	return Satisfy(func(b byte) bool { return b == c })
}

// Satisfy consumes one byte if it passes f
func Satisfy(f Predicate) Parser[byte] {
	return func(in []byte) ([]byte, byte, error) {
		if len(in) == 0 {
			return in, 0, ErrIncomplete
		}
		if !f(in[0]) {
			return in, 0, ErrUnmatched
		}
		return in[1:], in[0], nil
	}
}

// Opt reports whether the next byte is c, consuming it if it is. It only fails when there is no input to look at.
func Opt(c byte) Parser[bool] {
	return func(in []byte) ([]byte, bool, error) {
		if len(in) == 0 {
			return in, false, ErrIncomplete
		}
		if in[0] != c {
			return in, false, nil
		}
		return in[1:], true, nil
	}
}

/////REPETITIONS

// Take eats exactly n bytes. The result has its capacity clipped so appending to it can't clobber the input.
func Take(n int) Parser[[]byte] {
	return func(in []byte) ([]byte, []byte, error) {
		if n < 0 {
			return in, nil, ErrUnmatched
		}
		if len(in) < n {
			return in, nil, ErrIncomplete
		}
		return in[n:], in[:n:n], nil
	}
}

// TakeWhile keeps eating bytes while f returns true. An empty run is a match.
// It is a streaming parser: if the input runs out while every byte so far passed f,
// the run could still continue, so it returns ErrIncomplete along with the run scanned so far.
func TakeWhile(f Predicate) Parser[[]byte] {
	return func(in []byte) ([]byte, []byte, error) {
		for i, b := range in {
			if !f(b) {
				return in[i:], in[:i:i], nil
			}
		}
		return in, in, ErrIncomplete
	}
}

// Alt tries each parser in turn and returns the first one that doesn't fail with ErrUnmatched.
// ErrIncomplete stops the search: a later alternative must not win just because an earlier one lacked input.
func Alt[T any](ps ...Parser[T]) Parser[T] {
	return func(in []byte) ([]byte, T, error) {
		for _, p := range ps {
			rest, out, err := p(in)
			if errors.Is(err, ErrUnmatched) {
				continue
			}
			return rest, out, err
		}
		var zero T
		return in, zero, ErrUnmatched
	}
}

// Map transforms the result of p
func Map[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return func(in []byte) ([]byte, U, error) {
		rest, out, err := p(in)
		if err != nil {
			var zero U
			return in, zero, err
		}
		return rest, f(out), nil
	}
}

// Preceded runs pre then p, keeping only what p matched
func Preceded[P, T any](pre Parser[P], p Parser[T]) Parser[T] {
	return func(in []byte) ([]byte, T, error) {
		rest, _, err := pre(in)
		if err != nil {
			var zero T
			return in, zero, err
		}
		rest, out, err := p(rest)
		if err != nil {
			return in, out, err
		}
		return rest, out, nil
	}
}
