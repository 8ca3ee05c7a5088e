package formats

import (
	"bytes"
	"encoding/binary"
	"testing"

	"gotest.tools/v3/assert"
)

func TestMessageWire(t *testing.T) {
	var b bytes.Buffer
	assert.NilError(t, NewHave(7).Marshall(&b))
	assert.DeepEqual(t, b.Bytes(), []byte{0, 0, 0, 5, byte(Have), 0, 0, 0, 7})

	m, err := ReadMessage(&b)
	assert.NilError(t, err)
	assert.Equal(t, m.ID, Have)
	assert.Equal(t, binary.BigEndian.Uint32(m.Payload), uint32(7))
}

func TestMessageRoundTrip(t *testing.T) {
	msgs := []*Msg{
		NewChoke(),
		NewUnchoke(),
		NewIntd(),
		NewUnIntd(),
		NewHave(3),
		NewRequest(Ibl{Index: 1, Begin: BLOCK_LEN, Length: BLOCK_LEN}),
		NewPieceMsg(PieceMsg{Index: 1, Begin: 0, Block: []byte("data")}),
		NewExtended(2, []byte("de")),
		{ID: BitField, Payload: []byte{0xf0}},
	}
	var b bytes.Buffer
	for _, m := range msgs {
		assert.NilError(t, m.Marshall(&b), m.String())
	}
	for _, want := range msgs {
		got, err := ReadMessage(&b)
		assert.NilError(t, err)
		assert.Equal(t, got.ID, want.ID)
		assert.Equal(t, string(got.Payload), string(want.Payload), want.String())
	}
}

func TestKeepAlive(t *testing.T) {
	var b bytes.Buffer
	assert.NilError(t, (&Msg{KeepAlive: true}).Marshall(&b))
	assert.Equal(t, b.Len(), 4)
	m, err := ReadMessage(&b)
	assert.NilError(t, err)
	assert.Assert(t, m.KeepAlive)
	assert.Equal(t, m.String(), "KeepAlive")
}

func TestMessageErrors(t *testing.T) {
	err := (&Msg{ID: Have, Payload: []byte{1}}).Marshall(&bytes.Buffer{})
	assert.ErrorContains(t, err, "should be 4 bytes")

	_, err = ReadMessage(bytes.NewReader([]byte{0, 4, 0, 0, byte(Piece)}))
	assert.ErrorContains(t, err, "over the")

	_, err = ReadMessage(bytes.NewReader([]byte{0, 0, 0, 2, byte(Have), 1}))
	assert.ErrorContains(t, err, "should be 4 bytes")

	_, err = ParsePieceMsg(NewChoke())
	assert.ErrorContains(t, err, "Expected Piece")
}

func TestPieceMsg(t *testing.T) {
	p, err := ParsePieceMsg(NewPieceMsg(PieceMsg{Index: 4, Begin: 32, Block: []byte("block")}))
	assert.NilError(t, err)
	assert.DeepEqual(t, *p, PieceMsg{Index: 4, Begin: 32, Block: []byte("block")})
}

func TestBitfield(t *testing.T) {
	bf := make(Bitfield, 2)
	assert.NilError(t, bf.Set(0))
	assert.NilError(t, bf.Set(9))
	assert.Assert(t, bf.Has(0))
	assert.Assert(t, bf.Has(9))
	assert.Assert(t, !bf.Has(1))
	assert.Assert(t, !bf.Has(16))
	assert.DeepEqual(t, []byte(bf), []byte{0x80, 0x40})
	assert.ErrorContains(t, bf.Set(16), "Out of bounds")
}

func TestHandShake(t *testing.T) {
	var ih, id Sha1
	copy(ih[:], "infohashinfohashinfo")
	copy(id[:], "-BE0001-123456789012")

	h := NewHandShake(ih, id)
	assert.Assert(t, h.SupportsExtended())

	var b bytes.Buffer
	_, err := b.ReadFrom(h.Marshall())
	assert.NilError(t, err)
	assert.Equal(t, b.Len(), handshakeLen)
	b.WriteString("trailing")

	got, err := ParseHandShake(&b)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, h)
	assert.Equal(t, b.String(), "trailing")

	assert.NilError(t, got.Verify(ih))
	assert.ErrorContains(t, got.Verify(id), "Invalid infoHash")
}

func TestHandShakeErrors(t *testing.T) {
	_, err := ParseHandShake(bytes.NewReader([]byte{5, 'h', 'e', 'l', 'l', 'o'}))
	assert.ErrorContains(t, err, "We only support")

	bad := append([]byte{byte(len(PROTOCOL))}, bytes.Repeat([]byte{'x'}, handshakeLen-1)...)
	_, err = ParseHandShake(bytes.NewReader(bad))
	assert.ErrorContains(t, err, "We only support")
}

func TestExtendedHandshake(t *testing.T) {
	h := &ExtendedHandshake{
		M:            map[string]int64{"ut_pex": 1, "ut_metadata": 3},
		V:            "benc 0.1",
		Port:         6881,
		Reqq:         250,
		MetadataSize: 31235,
	}
	m, err := h.Msg()
	assert.NilError(t, err)
	assert.Equal(t, m.ID, Extended)
	assert.Equal(t, string(m.Payload[1:]),
		"d1:md11:ut_metadatai3e6:ut_pexi1ee13:metadata_sizei31235e1:pi6881e4:reqqi250e1:v8:benc 0.1e")

	var b bytes.Buffer
	assert.NilError(t, m.Marshall(&b))
	read, err := ReadMessage(&b)
	assert.NilError(t, err)
	got, err := ExtendedHandshakeFromMsg(read)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, h)
}

func TestParseExtendedHandshakeSkipsUnknown(t *testing.T) {
	payload := "d1:md6:ut_pexi2e3:badli1eee6:yourip4:\x7f\x00\x00\x011:v3:fooe"
	h, err := ParseExtendedHandshake([]byte(payload))
	assert.NilError(t, err)
	assert.DeepEqual(t, h.M, map[string]int64{"ut_pex": 2})
	assert.Equal(t, h.V, "foo")
}

func TestExtendedHandshakeErrors(t *testing.T) {
	_, err := ExtendedHandshakeFromMsg(NewHave(1))
	assert.ErrorContains(t, err, "Expected extended handshake")

	_, err = ExtendedHandshakeFromMsg(NewExtended(1, []byte("de")))
	assert.ErrorContains(t, err, "Expected extended handshake")

	_, err = ParseExtendedHandshake([]byte("d1:pi1e"))
	assert.ErrorIs(t, err, UnterminatedContainer)

	_, err = ParseExtendedHandshake([]byte("li1ee"))
	assert.ErrorContains(t, err, "not a dictionary")
}
