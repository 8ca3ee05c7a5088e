package formats

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Node is an owned bencode value: byte strings are copies, and lists and
// dictionaries are fully expanded. Dictionary pairs keep the order they
// were encountered in.
type Node struct {
	kind Kind
	n    int64
	s    []byte
	list []Node
	dict []Pair
}

type Pair struct {
	Key, Value Node
}

func NewInt(n int64) Node {
	return Node{kind: KindInteger, n: n}
}

// NewBytes copies b
func NewBytes(b []byte) Node {
	return Node{kind: KindByteString, s: append(make([]byte, 0, len(b)), b...)}
}

func NewString(s string) Node {
	return Node{kind: KindByteString, s: []byte(s)}
}

func NewList(items ...Node) Node {
	return Node{kind: KindList, list: items}
}

func NewDict(pairs ...Pair) Node {
	return Node{kind: KindDict, dict: pairs}
}

func (n Node) Kind() Kind {
	return n.kind
}

func (n Node) Int() (int64, bool) {
	return n.n, n.kind == KindInteger
}

func (n Node) Bytes() ([]byte, bool) {
	return n.s, n.kind == KindByteString
}

func (n Node) List() ([]Node, bool) {
	return n.list, n.kind == KindList
}

func (n Node) Dict() ([]Pair, bool) {
	return n.dict, n.kind == KindDict
}

// Get returns the value of the first pair whose key is the byte string key.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindDict {
		return Node{}, false
	}
	i := slices.IndexFunc(n.dict, func(p Pair) bool {
		return p.Key.kind == KindByteString && string(p.Key.s) == key
	})
	if i < 0 {
		return Node{}, false
	}
	return n.dict[i].Value, true
}

// Equal compares structurally. Empty and nil contents are the same.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindInteger:
		return n.n == o.n
	case KindByteString:
		return slices.Equal(n.s, o.s)
	case KindList:
		return slices.EqualFunc(n.list, o.list, Node.Equal)
	case KindDict:
		return slices.EqualFunc(n.dict, o.dict, func(a, b Pair) bool {
			return a.Key.Equal(b.Key) && a.Value.Equal(b.Value)
		})
	default:
		return true
	}
}

func (n Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n Node) write(sb *strings.Builder) {
	switch n.kind {
	case KindInteger:
		fmt.Fprintf(sb, "%d", n.n)
	case KindByteString:
		fmt.Fprintf(sb, "%q", n.s)
	case KindList:
		sb.WriteByte('[')
		for i, item := range n.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(']')
	case KindDict:
		sb.WriteByte('{')
		for i, p := range n.dict {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.Key.write(sb)
			sb.WriteString(": ")
			p.Value.write(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("<invalid>")
	}
}

// IntAs converts a decoded integer to T, failing if it doesn't fit.
func IntAs[T constraints.Integer](n int64) (T, bool) {
	t := T(n)
	if int64(t) != n || (t < 0) != (n < 0) {
		return t, false
	}
	return t, true
}

// Decode materializes every root value in buf. buf is taken as complete, so
// a value cut off at the end is an error rather than ErrIncomplete. Any
// error aborts the whole decode.
func Decode(buf []byte, opts ...Option) ([]Node, error) {
	cfg := newConfig(opts)
	var out []Node
	in := buf
	for {
		rest, v, ok, err := NextRoot(in)
		if err != nil {
			return nil, Locate(Final(err), len(buf))
		}
		if !ok {
			return out, nil
		}
		rest, n, err := cfg.materialize(v, rest, 0)
		if err != nil {
			return nil, Locate(Final(err), len(buf))
		}
		out = append(out, n)
		in = rest
	}
}

// DecodeOne materializes the root value at the start of in. It returns
// ErrIncomplete while the value is cut off, so it can be retried as more
// bytes arrive.
func DecodeOne(in []byte, opts ...Option) ([]byte, Node, error) {
	return newConfig(opts).decodeOne(in)
}

func (c config) decodeOne(in []byte) ([]byte, Node, error) {
	rest, v, err := PeekValue(in)
	if err != nil {
		return in, Node{}, err
	}
	rest, n, err := c.materialize(v, rest, 0)
	if err != nil {
		return in, Node{}, err
	}
	return rest, n, nil
}

func scalar(v Value) Node {
	if v.kind == KindInteger {
		return NewInt(v.n)
	}
	return NewBytes(v.s)
}

func (c config) materialize(v Value, in []byte, depth int) ([]byte, Node, error) {
	switch v.kind {
	case KindInteger, KindByteString:
		return in, scalar(v), nil
	case KindList:
		if depth >= c.maxDepth {
			return in, Node{}, syntaxErr(DepthExceeded, in)
		}
		var l List
		items := []Node{}
		for {
			rest, elem, ok, err := l.Next(in)
			if err != nil {
				return in, Node{}, err
			}
			if !ok {
				return rest, NewList(items...), nil
			}
			rest, item, err := c.materialize(elem, rest, depth+1)
			if err != nil {
				return in, Node{}, err
			}
			items = append(items, item)
			in = rest
		}
	case KindDict:
		if depth >= c.maxDepth {
			return in, Node{}, syntaxErr(DepthExceeded, in)
		}
		pairs := []Pair{}
		for {
			// keys are read with the value protocol, so a container key is
			// materialized like any other value
			rest, kv, ok, err := PeekValueOrEnd(in)
			if err != nil {
				return in, Node{}, err
			}
			if !ok {
				return rest, NewDict(pairs...), nil
			}
			rest, key, err := c.materialize(kv, rest, depth+1)
			if err != nil {
				return in, Node{}, err
			}

			if len(rest) == 0 {
				return in, Node{}, incomplete(OddEntryCount, rest)
			}
			if rest[0] == 'e' {
				return in, Node{}, syntaxErr(OddEntryCount, rest)
			}
			rest, vv, err := PeekValue(rest)
			if err != nil {
				return in, Node{}, err
			}
			rest, value, err := c.materialize(vv, rest, depth+1)
			if err != nil {
				return in, Node{}, err
			}
			pairs = append(pairs, Pair{Key: key, Value: value})
			in = rest
		}
	default:
		return in, Node{}, fmt.Errorf("bencode: cannot materialize %v", v)
	}
}
