package formats

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"gotest.tools/v3/assert"
)

func readAll(t *testing.T, r *Reader) []Node {
	t.Helper()
	var out []Node
	for {
		n, err := r.Next()
		if err == io.EOF {
			return out
		}
		assert.NilError(t, err)
		out = append(out, n)
	}
}

func TestReaderOneByteAtATime(t *testing.T) {
	for _, test := range decodeTestCases {
		r := NewReader(iotest.OneByteReader(strings.NewReader(test.value)), WithReadSize(1))
		assert.DeepEqual(t, readAll(t, r), test.expected)
		assert.Equal(t, r.Offset(), int64(len(test.value)))
	}
}

func TestReaderLargeByteString(t *testing.T) {
	payload := strings.Repeat("x", 10000)
	in := "l10000:" + payload + "i7ee"
	r := NewReader(iotest.HalfReader(strings.NewReader(in)), WithReadSize(16))
	nodes := readAll(t, r)
	assert.DeepEqual(t, nodes, []Node{NewList(NewString(payload), NewInt(7))})
}

func TestReaderEOF(t *testing.T) {
	r := NewReader(strings.NewReader("i1e"))
	_, err := r.Next()
	assert.NilError(t, err)
	_, err = r.Next()
	assert.Equal(t, err, io.EOF)
	_, err = r.Next()
	assert.Equal(t, err, io.EOF)

	_, err = NewReader(strings.NewReader("")).Next()
	assert.Equal(t, err, io.EOF)
}

func TestReaderOffset(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("i1ei2e")))
	_, err := r.Next()
	assert.NilError(t, err)
	assert.Equal(t, r.Offset(), int64(3))
	assert.Equal(t, r.Buffered(), 3)
}

func TestReaderTruncated(t *testing.T) {
	cases := []struct {
		in     string
		kind   ErrorKind
		offset int64
	}{
		{"i1eli2e", UnterminatedContainer, 7},
		{"i1ei12", UnterminatedContainer, 3},
		{"i1e5:ab", TruncatedByteString, 3},
		{"i1ed1:a", OddEntryCount, 7},
	}
	for _, tc := range cases {
		r := NewReader(iotest.OneByteReader(strings.NewReader(tc.in)))
		n, err := r.Next()
		assert.NilError(t, err)
		assert.DeepEqual(t, n, NewInt(1))

		_, err = r.Next()
		assert.ErrorIs(t, err, tc.kind, tc.in)
		assert.Assert(t, !errors.Is(err, ErrIncomplete), tc.in)
		var se *SyntaxError
		assert.Assert(t, errors.As(err, &se))
		assert.Equal(t, se.Offset, tc.offset, tc.in)

		_, again := r.Next()
		assert.Equal(t, again, err, "errors are sticky")
	}
}

func TestReaderMalformed(t *testing.T) {
	r := NewReader(strings.NewReader("i1exi2e"))
	_, err := r.Next()
	assert.NilError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, UnexpectedToken)
	var se *SyntaxError
	assert.Assert(t, errors.As(err, &se))
	assert.Equal(t, se.Offset, int64(3))
}

func TestReaderMaxDepth(t *testing.T) {
	r := NewReader(strings.NewReader("lllleeee"), WithMaxDepth(3))
	_, err := r.Next()
	assert.ErrorIs(t, err, DepthExceeded)
}

type stalledReader struct{}

func (stalledReader) Read([]byte) (int, error) { return 0, nil }

func TestReaderNoProgress(t *testing.T) {
	r := NewReader(io.MultiReader(strings.NewReader("i1ei"), stalledReader{}))
	n, err := r.Next()
	assert.NilError(t, err)
	assert.DeepEqual(t, n, NewInt(1))

	_, err = r.Next()
	assert.ErrorIs(t, err, io.ErrNoProgress)
}

func TestReaderSourceError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(io.MultiReader(strings.NewReader("i1e"), iotest.ErrReader(boom)))
	n, err := r.Next()
	assert.NilError(t, err)
	assert.DeepEqual(t, n, NewInt(1))
	_, err = r.Next()
	assert.ErrorIs(t, err, boom)
}
