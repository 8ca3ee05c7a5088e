package formats

import "github.com/OLUWAMUYIWA/benc/parsec"

// PeekValue decodes whichever value starts at in. Scalars are consumed whole;
// for a list or dictionary only the opening byte is consumed and the caller
// continues with List.Next or Dict.NextPair on the returned cursor.
func PeekValue(in []byte) ([]byte, Value, error) {
	c, err := parsec.Peek(in)
	if err != nil {
		return in, Value{}, incomplete(UnterminatedContainer, in)
	}

	switch {
	case c == 'l' || c == 'd':
		rest, kind, _ := containerHead(in)
		return rest, Value{kind: kind}, nil
	case c == 'i':
		rest, n, err := ParseInteger(in)
		if err != nil {
			return in, Value{}, err
		}
		return rest, Value{kind: KindInteger, n: n}, nil
	case parsec.IsDigit(c):
		rest, s, err := ParseByteString(in)
		if err != nil {
			return in, Value{}, err
		}
		return rest, Value{kind: KindByteString, s: s}, nil
	default:
		return in, Value{}, syntaxErr(UnexpectedToken, in)
	}
}

// PeekValueOrEnd is PeekValue inside a container: the terminator 'e' is
// consumed and reported with ok == false.
func PeekValueOrEnd(in []byte) (rest []byte, v Value, ok bool, err error) {
	c, err := parsec.Peek(in)
	if err != nil {
		return in, Value{}, false, incomplete(UnterminatedContainer, in)
	}
	if c == 'e' {
		return in[1:], Value{}, false, nil
	}
	rest, v, err = PeekValue(in)
	if err != nil {
		return in, Value{}, false, err
	}
	return rest, v, true, nil
}

// NextRoot is PeekValue at the top level of a document, where values sit
// back to back and the end of the buffer is the terminator. A stray 'e'
// here is UnexpectedToken.
//
// With input still arriving, ok == false only means "nothing more yet".
func NextRoot(in []byte) (rest []byte, v Value, ok bool, err error) {
	if len(in) == 0 {
		return in, Value{}, false, nil
	}
	rest, v, err = PeekValue(in)
	if err != nil {
		return in, Value{}, false, err
	}
	return rest, v, true, nil
}
