package formats

type frame struct {
	dict bool
	// a dictionary key has been read and its value is still due
	pending bool
}

// Skip finishes reading v, whose header was just decoded and whose contents
// (if it is a container) start at in. It returns the cursor after the whole
// value. Nesting is tracked with an explicit stack, so deep input does not
// grow the goroutine stack.
//
// Skip never hands out dictionary keys, so unlike Dict.NextPair it accepts
// lists and dictionaries in key position.
func Skip(v Value, in []byte) ([]byte, error) {
	if !v.IsContainer() {
		return in, nil
	}

	var inline [16]frame
	stack := append(inline[:0], frame{dict: v.kind == KindDict})
	rest := in
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		var (
			next []byte
			elem Value
			ok   bool
			err  error
		)
		if top.pending {
			if len(rest) == 0 {
				return in, incomplete(OddEntryCount, rest)
			}
			if rest[0] == 'e' {
				return in, syntaxErr(OddEntryCount, rest)
			}
			next, elem, err = PeekValue(rest)
			ok = true
		} else {
			next, elem, ok, err = PeekValueOrEnd(rest)
		}
		if err != nil {
			return in, err
		}
		rest = next
		if top.dict && ok {
			top.pending = !top.pending
		}
		switch {
		case !ok:
			stack = stack[:len(stack)-1]
		case elem.IsContainer():
			stack = append(stack, frame{dict: elem.kind == KindDict})
		}
	}
	return rest, nil
}

// SkipValue consumes one complete value.
func SkipValue(in []byte) ([]byte, error) {
	rest, v, err := PeekValue(in)
	if err != nil {
		return in, err
	}
	rest, err = Skip(v, rest)
	if err != nil {
		return in, err
	}
	return rest, nil
}

// Span returns the raw encoding of the value at in and the cursor after it.
func Span(in []byte) (raw, rest []byte, err error) {
	rest, err = SkipValue(in)
	if err != nil {
		return nil, in, err
	}
	return in[: len(in)-len(rest) : len(in)-len(rest)], rest, nil
}

// containerStart backs up from the contents of a container to its header
// byte. contents must be a cursor returned by decoding that container's
// Value out of outer.
func containerStart(outer, contents []byte) []byte {
	return outer[len(outer)-len(contents)-1:]
}
