package formats

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/anacrolix/missinggo"
	"github.com/bradfitz/iter"
	"github.com/pkg/errors"
)

// https://wiki.theory.org/index.php/BitTorrentSpecification#Metainfo_File_Structure

// BLOCK_LEN is the size of the blocks a piece is requested in. The last block of a piece may be shorter.
const BLOCK_LEN = 1 << 14

type Sha1 [20]byte

func (s Sha1) String() string {
	return hex.EncodeToString(s[:])
}

type MetaInfo struct {
	Info     InfoDict
	Announce string // url of the tracker

	//optionals
	AnnounceList [][]string
	CreationDate time.Time
	Comment      string
	CreatedBy    string
	Encoding     string

	// sha1 of the info dictionary exactly as it appeared in the file
	InfoHash Sha1
}

// InfoDict describes the files of the torrent
type InfoDict struct {
	PieceLen   int64  // number of bytes in each piece
	PiecesHash []Sha1 // SHAs of the piece at the corresponding index
	Name       string // name of file in single file mode, name of directory in directory mode
	Private    bool

	Length int64  // single-file mode only
	MD5Sum string // single-file mode only
	Files  []Info // directory mode only
}

type Info struct {
	Length int64
	MD5Sum string
	Path   []string
}

func (m MetaInfo) String() string {
	return fmt.Sprintf(
		"Announce: %s\nCreation Time: %s\nCreated By: %s",
		m.Announce, m.CreationDate, m.CreatedBy,
	)
}

func (i InfoDict) IsDir() bool {
	return len(i.Files) > 0
}

// ParseMetaInfo reads a .torrent file. The root dictionary is walked lazily;
// the info dictionary is hashed straight from its raw bytes and then
// materialized.
func ParseMetaInfo(buf []byte) (*MetaInfo, error) {
	fail := func(err error) (*MetaInfo, error) {
		return nil, errors.Wrap(Locate(Final(err), len(buf)), "parsing metainfo")
	}

	cur, root, err := PeekValue(buf)
	if err != nil {
		return fail(err)
	}
	d, ok := root.Dict()
	if !ok {
		return nil, errors.Errorf("parsing metainfo: root is a %v, not a dictionary", root.Kind())
	}

	m := &MetaInfo{}
	sawInfo := false
	for {
		next, k, v, ok, err := d.NextPair(cur)
		if err != nil {
			return fail(err)
		}
		if !ok {
			break
		}
		key, _ := k.Bytes()

		switch string(key) {
		case "info":
			if v.Kind() != KindDict {
				return nil, errors.Errorf("parsing metainfo: info is a %v", v.Kind())
			}
			raw, rest, err := Span(containerStart(cur, next))
			if err != nil {
				return fail(err)
			}
			m.InfoHash = sha1.Sum(raw)
			if m.Info, err = parseInfo(raw); err != nil {
				return nil, err
			}
			sawInfo = true
			next = rest
		case "announce":
			m.Announce = stringValue(v)
		case "comment":
			m.Comment = stringValue(v)
		case "created by":
			m.CreatedBy = stringValue(v)
		case "encoding":
			m.Encoding = stringValue(v)
		case "creation date":
			if secs, ok := v.Int(); ok {
				m.CreationDate = time.Unix(secs, 0).UTC()
			}
		case "announce-list":
			if next, err = parseAnnounceList(v, next, &m.AnnounceList); err != nil {
				return fail(err)
			}
		default:
			if next, err = Skip(v, next); err != nil {
				return fail(err)
			}
		}
		cur = next
	}

	if !sawInfo {
		return nil, errors.New("parsing metainfo: no info dictionary")
	}
	return m, nil
}

func stringValue(v Value) string {
	b, _ := v.Bytes()
	return string(b)
}

// announce-list is a list of tiers, each a list of tracker urls
func parseAnnounceList(v Value, in []byte, out *[][]string) ([]byte, error) {
	tiers, ok := v.List()
	if !ok {
		return Skip(v, in)
	}
	for {
		rest, tier, ok, err := tiers.Next(in)
		if err != nil {
			return in, err
		}
		if !ok {
			return rest, nil
		}
		urls, isList := tier.List()
		if !isList {
			if in, err = Skip(tier, rest); err != nil {
				return in, err
			}
			continue
		}
		var group []string
		for {
			after, url, ok, err := urls.Next(rest)
			if err != nil {
				return in, err
			}
			rest = after
			if !ok {
				break
			}
			if url.Kind() == KindByteString {
				group = append(group, stringValue(url))
				continue
			}
			if rest, err = Skip(url, rest); err != nil {
				return in, err
			}
		}
		*out = append(*out, group)
		in = rest
	}
}

func parseInfo(raw []byte) (InfoDict, error) {
	var info InfoDict
	_, n, err := DecodeOne(raw)
	if err != nil {
		return info, errors.Wrap(Locate(Final(err), len(raw)), "parsing info dictionary")
	}

	if name, ok := n.Get("name"); ok {
		b, _ := name.Bytes()
		info.Name = string(b)
	}
	if info.PieceLen, err = requireInt(n, "piece length"); err != nil {
		return info, err
	}
	if info.PieceLen <= 0 {
		return info, errors.Errorf("info: piece length %d is not positive", info.PieceLen)
	}
	if private, ok := n.Get("private"); ok {
		p, _ := private.Int()
		info.Private = p == 1
	}

	pieces, _ := n.Get("pieces")
	hashes, ok := pieces.Bytes()
	if !ok || len(hashes)%20 != 0 {
		return info, errors.Errorf("info: pieces must be a byte string of 20-byte hashes, got %d bytes", len(hashes))
	}
	info.PiecesHash = make([]Sha1, len(hashes)/20)
	for i := range iter.N(len(info.PiecesHash)) {
		missinggo.CopyExact(&info.PiecesHash[i], hashes[i*20:(i+1)*20])
	}

	files, isDir := n.Get("files")
	if !isDir {
		if info.Length, err = requireInt(n, "length"); err != nil {
			return info, err
		}
		info.MD5Sum = optString(n, "md5sum")
		return info, nil
	}

	list, ok := files.List()
	if !ok {
		return info, errors.New("info: files is not a list")
	}
	for i, f := range list {
		var fi Info
		if fi.Length, err = requireInt(f, "length"); err != nil {
			return info, errors.Wrapf(err, "file %d", i)
		}
		fi.MD5Sum = optString(f, "md5sum")
		path, _ := f.Get("path")
		parts, ok := path.List()
		if !ok || len(parts) == 0 {
			return info, errors.Errorf("info: file %d has no path", i)
		}
		for _, p := range parts {
			b, ok := p.Bytes()
			if !ok {
				return info, errors.Errorf("info: file %d has a non-string path element", i)
			}
			fi.Path = append(fi.Path, string(b))
		}
		info.Files = append(info.Files, fi)
	}
	return info, nil
}

func requireInt(n Node, key string) (int64, error) {
	v, ok := n.Get(key)
	if !ok {
		return 0, errors.Errorf("info: missing %q", key)
	}
	i, ok := v.Int()
	if !ok {
		return 0, errors.Errorf("info: %q is a %v, not an integer", key, v.Kind())
	}
	return i, nil
}

func optString(n Node, key string) string {
	v, _ := n.Get(key)
	b, _ := v.Bytes()
	return string(b)
}

// TotalLength is the sum of the lengths of all the files
func (m MetaInfo) TotalLength() int64 {
	if !m.Info.IsDir() {
		return m.Info.Length
	}
	var total int64
	for _, f := range m.Info.Files {
		total += f.Length
	}
	return total
}

func (m MetaInfo) NumPieces() int {
	return len(m.Info.PiecesHash)
}

// PieceLen is the length of piece i; only the last piece may be short
func (m MetaInfo) PieceLen(i int) int64 {
	if i < 0 || i >= m.NumPieces() {
		return 0
	}
	if i == m.NumPieces()-1 {
		if rem := m.TotalLength() % m.Info.PieceLen; rem != 0 {
			return rem
		}
	}
	return m.Info.PieceLen
}

func (m MetaInfo) NumBlocksInPiece(i int) int {
	n, _ := IntAs[int]((m.PieceLen(i) + BLOCK_LEN - 1) / BLOCK_LEN)
	return n
}

// BlockLen is the length of block b of piece i
func (m MetaInfo) BlockLen(i, b int) int {
	pl := m.PieceLen(i)
	begin := int64(b) * BLOCK_LEN
	if b < 0 || begin >= pl {
		return 0
	}
	if pl-begin < BLOCK_LEN {
		return int(pl - begin)
	}
	return BLOCK_LEN
}

// Blocks lays out every block of piece i
func (m MetaInfo) Blocks(i int) []Ibl {
	blocks := make([]Ibl, 0, m.NumBlocksInPiece(i))
	for b := range iter.N(m.NumBlocksInPiece(i)) {
		blocks = append(blocks, Ibl{Index: i, Begin: b * BLOCK_LEN, Length: m.BlockLen(i, b)})
	}
	return blocks
}
