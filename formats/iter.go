package formats

// List and Dict are handles for walking a container. They hold no position:
// the cursor is threaded through by the caller, and each call must be given
// the cursor returned by the previous call on the same container (or, for
// the first call, the cursor returned when the container's Value was
// decoded). Passing any other cursor is a caller bug that is not detected.
//
// A caller may stop pulling at any point. The rest of the container then
// stays unread; use Skip to move past it.
type List struct{}

// Next returns the next element, or ok == false once the closing 'e' has been consumed.
func (List) Next(in []byte) (rest []byte, v Value, ok bool, err error) {
	return PeekValueOrEnd(in)
}

type Dict struct{}

// NextPair returns the next key/value pair, or ok == false once the closing
// 'e' has been consumed. Keys must be integers or byte strings. A key with
// no value after it is OddEntryCount.
//
// Ordering and uniqueness of keys are not checked.
func (Dict) NextPair(in []byte) (rest []byte, key, val Value, ok bool, err error) {
	rest, key, ok, err = PeekValueOrEnd(in)
	if err != nil || !ok {
		return rest, Value{}, Value{}, false, err
	}
	if key.IsContainer() {
		return in, Value{}, Value{}, false, syntaxErr(InvalidKey, in)
	}

	if len(rest) == 0 {
		return in, Value{}, Value{}, false, incomplete(OddEntryCount, rest)
	}
	if rest[0] == 'e' {
		return in, Value{}, Value{}, false, syntaxErr(OddEntryCount, rest)
	}
	rest, val, err = PeekValue(rest)
	if err != nil {
		return in, Value{}, Value{}, false, err
	}
	return rest, key, val, true, nil
}
