package formats

import (
	"errors"
	"math"

	"github.com/OLUWAMUYIWA/benc/parsec"
)

// https://wiki.theory.org/index.php/BitTorrentSpecification#Bencoding
//
// integer      i [-] uint e
// uint         0 | [1-9][0-9]*
// byte string  uint : <uint raw bytes>
// list         l value* e
// dictionary   d (value value)* e

var (
	leadDigit = parsec.Satisfy(parsec.IsDigit)
	digits    = parsec.TakeWhile(parsec.IsDigit)
	colon     = parsec.Tag(':')
	end       = parsec.Tag('e')

	// 'i' then an optional '-', reporting whether the sign was there
	integerHead = parsec.Preceded(parsec.Tag('i'), parsec.Opt('-'))

	containerHead = parsec.Map(parsec.Alt(parsec.Tag('l'), parsec.Tag('d')), func(c byte) Kind {
		if c == 'l' {
			return KindList
		}
		return KindDict
	})
)

const maxInt = int(^uint(0) >> 1)

// ParseUint lexes an unsigned decimal with no leading zeros. A run of digits
// touching the end of the input is ErrIncomplete since it might continue.
// Runs that don't fit in a uint64 are LengthOverflow.
func ParseUint(in []byte) ([]byte, uint64, error) {
	return parseUint(in, MalformedLength)
}

// eof is the kind an ErrIncomplete turns into under Final
func parseUint(in []byte, eof ErrorKind) ([]byte, uint64, error) {
	rest, head, err := leadDigit(in)
	switch {
	case errors.Is(err, parsec.ErrIncomplete):
		return in, 0, incomplete(eof, in)
	case err != nil:
		return in, 0, syntaxErr(MalformedLength, in)
	}

	if head == '0' {
		if len(rest) > 0 && parsec.IsDigit(rest[0]) {
			return in, 0, syntaxErr(MalformedLength, rest)
		}
		return rest, 0, nil
	}

	// overflow is checked on the partial run too, so an endless digit stream fails early
	rest, run, err := digits(rest)
	n := uint64(head - '0')
	for i, c := range run {
		d := uint64(c - '0')
		if n > (math.MaxUint64-d)/10 {
			return in, 0, syntaxErr(LengthOverflow, run[i:])
		}
		n = n*10 + d
	}
	if err != nil {
		return in, 0, incomplete(eof, in)
	}
	return rest, n, nil
}

// ParseInteger lexes i[-]<uint>e. "-0" is MalformedInteger, and so is a
// sign not followed by a digit or anything other than 'e' after the digits. Magnitudes outside int64 are IntegerOverflow.
func ParseInteger(in []byte) ([]byte, int64, error) {
	rest, neg, err := integerHead(in)
	switch {
	case errors.Is(err, parsec.ErrIncomplete):
		return in, 0, incomplete(UnterminatedContainer, in)
	case err != nil:
		return in, 0, syntaxErr(UnexpectedToken, in)
	}
	if neg && len(rest) > 0 && !parsec.IsDigit(rest[0]) {
		return in, 0, syntaxErr(MalformedInteger, rest)
	}

	digitsAt := rest
	rest, mag, err := parseUint(rest, UnterminatedContainer)
	if err != nil {
		if errors.Is(err, ErrIncomplete) {
			return in, 0, incomplete(UnterminatedContainer, in)
		}
		return in, 0, err
	}
	if neg && mag == 0 {
		return in, 0, syntaxErr(MalformedInteger, digitsAt)
	}
	if mag > math.MaxInt64 && !(neg && mag == math.MaxInt64+1) {
		return in, 0, syntaxErr(IntegerOverflow, digitsAt)
	}

	rest, _, err = end(rest)
	switch {
	case errors.Is(err, parsec.ErrIncomplete):
		return in, 0, incomplete(UnterminatedContainer, in)
	case err != nil:
		return in, 0, syntaxErr(MalformedInteger, rest)
	}

	// for mag == 1<<63 the conversion wraps to MinInt64 and negation leaves it there
	n := int64(mag)
	if neg {
		n = -n
	}
	return rest, n, nil
}

// ParseByteString lexes <uint>:<bytes>. The returned slice aliases in; it is
// only valid while the caller keeps that buffer alive and unmodified.
func ParseByteString(in []byte) ([]byte, []byte, error) {
	rest, n, err := parseUint(in, TruncatedByteString)
	if err != nil {
		return in, nil, err
	}

	rest, _, err = colon(rest)
	switch {
	case errors.Is(err, parsec.ErrIncomplete):
		return in, nil, incomplete(TruncatedByteString, in)
	case err != nil:
		return in, nil, syntaxErr(MalformedLength, rest)
	}

	if n > uint64(maxInt) {
		return in, nil, syntaxErr(LengthOverflow, in)
	}
	rest, s, err := parsec.Take(int(n))(rest)
	if err != nil {
		return in, nil, incomplete(TruncatedByteString, in)
	}
	return rest, s, nil
}
