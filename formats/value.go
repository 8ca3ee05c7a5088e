package formats

import "fmt"

// Kind is one of the four bencode forms
type Kind uint8

const (
	KindInteger Kind = iota + 1
	KindByteString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindByteString:
		return "byte string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a lazily decoded bencode value. Byte strings alias the input
// buffer. Lists and dictionaries are only their opening byte: their contents
// are still in front of the cursor returned alongside the Value, to be pulled
// with List.Next or Dict.NextPair.
type Value struct {
	kind Kind
	n    int64
	s    []byte
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsContainer() bool {
	return v.kind == KindList || v.kind == KindDict
}

func (v Value) Int() (int64, bool) {
	return v.n, v.kind == KindInteger
}

// Bytes returns the byte string payload, which aliases the decoded buffer
func (v Value) Bytes() ([]byte, bool) {
	return v.s, v.kind == KindByteString
}

func (v Value) List() (List, bool) {
	return List{}, v.kind == KindList
}

func (v Value) Dict() (Dict, bool) {
	return Dict{}, v.kind == KindDict
}

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("i%de", v.n)
	case KindByteString:
		return fmt.Sprintf("%q", v.s)
	case KindList:
		return "l..."
	case KindDict:
		return "d..."
	default:
		return "<invalid>"
	}
}
