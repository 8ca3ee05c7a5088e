package formats

import (
	"bytes"
	"fmt"
	"io"

	"github.com/anacrolix/missinggo"
)

const PROTOCOL = "BitTorrent protocol"

// handshake: <pstrlen><pstr><reserved><info_hash><peer_id>

// pstrlen: string length of <pstr>, as a single raw byte
// pstr: string identifier of the protocol
// reserved: eight (8) reserved bytes. Bit 20 from the right (reserved[5] & 0x10) advertises the extension protocol.
// peer_id: 20-byte string used as a unique ID for the client.

const handshakeLen = 49 + len(PROTOCOL)

type HandShake struct {
	Reserved [8]byte
	InfoHash Sha1
	PeerId   Sha1
}

// NewHandShake builds a handshake that advertises the extension protocol
func NewHandShake(infoHash, peerId Sha1) *HandShake {
	h := &HandShake{InfoHash: infoHash, PeerId: peerId}
	h.Reserved[5] |= 0x10
	return h
}

func (h *HandShake) SupportsExtended() bool {
	return h.Reserved[5]&0x10 != 0
}

// Marshall marshalls an handshake object into a reader that can be read from
func (h *HandShake) Marshall() io.Reader {
	b := &bytes.Buffer{}
	b.Grow(handshakeLen)
	b.WriteByte(byte(len(PROTOCOL)))
	b.WriteString(PROTOCOL)
	b.Write(h.Reserved[:])
	b.Write(h.InfoHash[:])
	b.Write(h.PeerId[:])
	return b
}

// ParseHandShake parses an handshake from a stream of bytes. It reads exactly one handshake and nothing more.
func ParseHandShake(r io.Reader) (*HandShake, error) {
	all := make([]byte, handshakeLen)
	if _, err := io.ReadFull(r, all[:1]); err != nil {
		return nil, err
	}
	if int(all[0]) != len(PROTOCOL) {
		return nil, fmt.Errorf("We only support: %s, got a pstr of length %d", PROTOCOL, all[0])
	}
	if _, err := io.ReadFull(r, all[1:]); err != nil {
		return nil, err
	}
	rest := all[1:]
	if string(rest[:len(PROTOCOL)]) != PROTOCOL {
		return nil, fmt.Errorf("We only support: %s", PROTOCOL)
	}
	rest = rest[len(PROTOCOL):]

	h := &HandShake{}
	missinggo.CopyExact(&h.Reserved, rest[:8])
	missinggo.CopyExact(&h.InfoHash, rest[8:28])
	missinggo.CopyExact(&h.PeerId, rest[28:48])
	return h, nil
}

// Verify checks the peer is talking about the torrent we asked for
func (h *HandShake) Verify(infoHash Sha1) error {
	if h.InfoHash != infoHash {
		return fmt.Errorf("Invalid infoHash gotten. expected: % x. Got % x", infoHash[:], h.InfoHash[:])
	}
	return nil
}
