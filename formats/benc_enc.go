package formats

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

type BencEncoder struct {
	wtr io.Writer
}

func NewBencoder(wtr io.Writer) *BencEncoder {
	return &BencEncoder{
		wtr: wtr,
	}
}

// Encode writes n in one Write call. Dictionary pairs go out in the order
// they are stored; nothing is sorted.
func (b *BencEncoder) Encode(n Node) error {
	out, err := marshall(nil, n)
	if err != nil {
		return err
	}
	_, err = b.wtr.Write(out)
	return err
}

// Marshal returns the encoding of n.
func Marshal(n Node) ([]byte, error) {
	var b bytes.Buffer
	if err := NewBencoder(&b).Encode(n); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// marshall is a subroutine used by `Encode` to do the actual marshalling
func marshall(dst []byte, n Node) ([]byte, error) {
	switch n.kind {
	case KindInteger:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, n.n, 10)
		return append(dst, 'e'), nil
	case KindByteString:
		dst = strconv.AppendInt(dst, int64(len(n.s)), 10)
		dst = append(dst, ':')
		return append(dst, n.s...), nil
	case KindList:
		dst = append(dst, 'l')
		for _, item := range n.list {
			var err error
			if dst, err = marshall(dst, item); err != nil {
				return nil, err
			}
		}
		return append(dst, 'e'), nil
	case KindDict:
		dst = append(dst, 'd')
		for _, p := range n.dict {
			var err error
			if dst, err = marshall(dst, p.Key); err != nil {
				return nil, err
			}
			if dst, err = marshall(dst, p.Value); err != nil {
				return nil, err
			}
		}
		return append(dst, 'e'), nil
	default:
		return nil, fmt.Errorf("bencode: cannot encode an empty Node")
	}
}
