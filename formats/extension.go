package formats

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ExtendedHandshake is the bencoded dictionary carried by extended message 0 (BEP 10).
type ExtendedHandshake struct {
	M            map[string]int64 // extension name -> message id the sender wants it on; 0 disables
	V            string           // client name and version
	Port         int64            // "p", the sender's listen port
	Reqq         int64            // outstanding request queue size
	MetadataSize int64            // BEP 9, size of the info dictionary
}

// ParseExtendedHandshake decodes the payload of an extended handshake message
// (the bytes after the extension id). Keys it does not know are skipped unread.
func ParseExtendedHandshake(payload []byte) (*ExtendedHandshake, error) {
	fail := func(err error) (*ExtendedHandshake, error) {
		return nil, fmt.Errorf("extended handshake: %w", Locate(Final(err), len(payload)))
	}

	cur, root, err := PeekValue(payload)
	if err != nil {
		return fail(err)
	}
	d, ok := root.Dict()
	if !ok {
		return nil, fmt.Errorf("extended handshake: payload is a %v, not a dictionary", root.Kind())
	}

	h := &ExtendedHandshake{M: map[string]int64{}}
	for {
		next, k, v, ok, err := d.NextPair(cur)
		if err != nil {
			return fail(err)
		}
		if !ok {
			return h, nil
		}
		key, _ := k.Bytes()
		n, _ := v.Int()

		switch string(key) {
		case "m":
			if next, err = h.parseM(v, next); err != nil {
				return fail(err)
			}
		case "v":
			h.V = stringValue(v)
		case "p":
			h.Port = n
		case "reqq":
			h.Reqq = n
		case "metadata_size":
			h.MetadataSize = n
		default:
			if next, err = Skip(v, next); err != nil {
				return fail(err)
			}
		}
		cur = next
	}
}

func (h *ExtendedHandshake) parseM(v Value, in []byte) ([]byte, error) {
	m, ok := v.Dict()
	if !ok {
		return Skip(v, in)
	}
	for {
		rest, k, id, ok, err := m.NextPair(in)
		if err != nil {
			return in, err
		}
		if !ok {
			return rest, nil
		}
		if rest, err = Skip(id, rest); err != nil {
			return in, err
		}
		name, _ := k.Bytes()
		if n, isInt := id.Int(); isInt && len(name) > 0 {
			h.M[string(name)] = n
		}
		in = rest
	}
}

// Node builds the dictionary with keys in sorted order, as bencode requires on the wire.
func (h *ExtendedHandshake) Node() Node {
	names := maps.Keys(h.M)
	slices.Sort(names)
	m := make([]Pair, 0, len(names))
	for _, name := range names {
		m = append(m, Pair{Key: NewString(name), Value: NewInt(h.M[name])})
	}

	pairs := []Pair{{Key: NewString("m"), Value: NewDict(m...)}}
	if h.MetadataSize > 0 {
		pairs = append(pairs, Pair{Key: NewString("metadata_size"), Value: NewInt(h.MetadataSize)})
	}
	if h.Port > 0 {
		pairs = append(pairs, Pair{Key: NewString("p"), Value: NewInt(h.Port)})
	}
	if h.Reqq > 0 {
		pairs = append(pairs, Pair{Key: NewString("reqq"), Value: NewInt(h.Reqq)})
	}
	if h.V != "" {
		pairs = append(pairs, Pair{Key: NewString("v"), Value: NewString(h.V)})
	}
	return NewDict(pairs...)
}

// Msg wraps the handshake in an extended message with extension id 0
func (h *ExtendedHandshake) Msg() (*Msg, error) {
	payload, err := Marshal(h.Node())
	if err != nil {
		return nil, err
	}
	return NewExtended(0, payload), nil
}

// ExtendedHandshakeFromMsg decodes m if it is an extension handshake
func ExtendedHandshakeFromMsg(m *Msg) (*ExtendedHandshake, error) {
	if m.KeepAlive || m.ID != Extended || len(m.Payload) == 0 || m.Payload[0] != 0 {
		return nil, fmt.Errorf("Expected extended handshake, got: %s", m)
	}
	return ParseExtendedHandshake(m.Payload[1:])
}
