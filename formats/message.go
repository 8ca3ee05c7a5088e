package formats

import (
	"encoding/binary"
	"fmt"
	"io"
)

type MsgId uint8

const (
	Choke MsgId = iota
	Unchoke
	Interested
	Uninterested
	Have
	BitField
	Request
	Piece
	Cancel
	Port

	// BEP 10 extension protocol
	Extended MsgId = 20
)

// maxMsgLen bounds the length prefix we are willing to allocate for: a piece message carrying one block, with room to spare
const maxMsgLen = 1 << 17

// Msg: All of the remaining messages in the protocol take the form of <length prefix><message ID><payload>
// A keep-alive is a bare zero length prefix and has no ID.
type Msg struct {
	KeepAlive bool
	ID        MsgId
	Payload   []byte
}

// Stringer impl of Msg so i can print out the type
func (m Msg) String() string {
	if m.KeepAlive {
		return "KeepAlive"
	}
	switch m.ID {
	case Choke:
		return "Choke"
	case Unchoke:
		return "Unchoke"
	case Interested:
		return "Interested"
	case Uninterested:
		return "Uninterested"
	case Have:
		return "Have"
	case BitField:
		return "BitField"
	case Request:
		return "Request"
	case Piece:
		return "Piece"
	case Cancel:
		return "Cancel"
	case Port:
		return "Port"
	case Extended:
		return "Extended"
	default:
		return fmt.Sprintf("Unknown(%d)", m.ID)
	}
}

type Bitfield []byte

func (b Bitfield) Set(i int) error {
	pos := i / 8 // byte position
	off := i % 8 // offset in byte position
	if i < 0 || pos >= len(b) {
		return fmt.Errorf("Out of bounds")
	}
	b[pos] = b[pos] | (1 << uint(7-off))
	return nil
}

func (b Bitfield) Has(i int) bool {
	if i < 0 {
		return false
	}
	pos := i / 8
	off := i % 8
	if pos >= len(b) {
		return false
	}
	return b[pos]>>uint(7-off)&1 != 0
}

// payloadLen is the fixed payload size for each id, -1 where it varies
func payloadLen(id MsgId) int {
	switch id {
	case Choke, Unchoke, Interested, Uninterested:
		return 0
	case Have:
		return 4
	case Request, Cancel:
		return 12
	case Port:
		return 2
	default:
		return -1
	}
}

func (m *Msg) Marshall(w io.Writer) error {
	if m.KeepAlive {
		_, err := w.Write(make([]byte, 4))
		return err
	}
	if want := payloadLen(m.ID); want >= 0 && len(m.Payload) != want {
		return fmt.Errorf("%s payload should be %d bytes long, is %d", m, want, len(m.Payload))
	}
	buf := make([]byte, 5+len(m.Payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(1+len(m.Payload)))
	buf[4] = byte(m.ID)
	copy(buf[5:], m.Payload)
	_, err := w.Write(buf)
	return err
}

func ReadMessage(r io.Reader) (*Msg, error) {
	lBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lBuf); err != nil {
		return nil, err
	}
	l := binary.BigEndian.Uint32(lBuf)

	if l == 0 {
		return &Msg{KeepAlive: true}, nil
	}
	if l > maxMsgLen {
		return nil, fmt.Errorf("message length %d is over the %d limit", l, maxMsgLen)
	}

	msg := make([]byte, l)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	m := &Msg{ID: MsgId(msg[0]), Payload: msg[1:]}
	if want := payloadLen(m.ID); want >= 0 && len(m.Payload) != want {
		return nil, fmt.Errorf("%s payload should be %d bytes long, is %d", m, want, len(m.Payload))
	}
	return m, nil
}

func NewChoke() *Msg {
	return &Msg{ID: Choke}
}

func NewUnchoke() *Msg {
	return &Msg{ID: Unchoke}
}

func NewIntd() *Msg {
	return &Msg{ID: Interested}
}

func NewUnIntd() *Msg {
	return &Msg{ID: Uninterested}
}

func NewHave(pieceIndex uint32) *Msg {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, pieceIndex)
	return &Msg{ID: Have, Payload: p}
}

// Ibl Index-Begin-Length trio data structure
type Ibl struct {
	Index, Begin, Length int
}

func NewRequest(ibl Ibl) *Msg {
	payload := make([]byte, 12)
	binary.BigEndian.PutUint32(payload[0:4], uint32(ibl.Index))
	binary.BigEndian.PutUint32(payload[4:8], uint32(ibl.Begin))
	binary.BigEndian.PutUint32(payload[8:12], uint32(ibl.Length))
	return &Msg{ID: Request, Payload: payload}
}

type PieceMsg struct {
	Index, Begin uint32
	Block        []byte
}

func NewPieceMsg(p PieceMsg) *Msg {
	payload := make([]byte, 8+len(p.Block))
	binary.BigEndian.PutUint32(payload[0:4], p.Index)
	binary.BigEndian.PutUint32(payload[4:8], p.Begin)
	copy(payload[8:], p.Block)
	return &Msg{ID: Piece, Payload: payload}
}

func ParsePieceMsg(m *Msg) (*PieceMsg, error) {
	if m.ID != Piece {
		return nil, fmt.Errorf("Expected Piece, got: %s", m)
	}
	if len(m.Payload) < 8 {
		return nil, fmt.Errorf("Piece payload too short: %d bytes", len(m.Payload))
	}
	return &PieceMsg{
		Index: binary.BigEndian.Uint32(m.Payload[0:4]),
		Begin: binary.BigEndian.Uint32(m.Payload[4:8]),
		Block: m.Payload[8:],
	}, nil
}

// NewExtended wraps a bencoded payload for extension extID. extID 0 is the extension handshake.
func NewExtended(extID byte, payload []byte) *Msg {
	return &Msg{ID: Extended, Payload: append([]byte{extID}, payload...)}
}
