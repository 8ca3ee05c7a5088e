package formats

import (
	"errors"
	"io"
)

// Reader decodes successive root values from a stream. Bytes are read into a
// growing buffer and a value is only returned once it is complete; a partial
// value just triggers another read.
type Reader struct {
	r   io.Reader
	cfg config

	buf      []byte
	off      int   // start of unconsumed bytes in buf
	consumed int64 // stream offset of buf[0]
	eof      bool
	err      error
}

// same limit as bufio
const maxConsecutiveEmptyReads = 100

func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{r: r, cfg: newConfig(opts)}
}

// Next returns the next root value, or io.EOF once the stream ends cleanly
// between values. A stream that ends in the middle of a value fails with the
// SyntaxError for that truncation. Errors are sticky.
func (d *Reader) Next() (Node, error) {
	if d.err != nil {
		return Node{}, d.err
	}
	for {
		if window := d.buf[d.off:]; len(window) > 0 {
			// a partial value costs a scan per refill, not a materialization
			_, err := SkipValue(window)
			if err == nil {
				rest, n, err := d.cfg.decodeOne(window)
				if err != nil {
					d.err = locate(Final(err), len(window), d.Offset())
					return Node{}, d.err
				}
				d.off += len(window) - len(rest)
				return n, nil
			}
			if !errors.Is(err, ErrIncomplete) || d.eof {
				d.err = locate(Final(err), len(window), d.Offset())
				return Node{}, d.err
			}
		} else if d.eof {
			return Node{}, io.EOF
		}

		if err := d.fill(); err != nil {
			d.err = err
			return Node{}, err
		}
	}
}

// Offset is the number of stream bytes consumed by values returned so far.
func (d *Reader) Offset() int64 {
	return d.consumed + int64(d.off)
}

// Buffered is the number of bytes read from the source but not yet returned as part of a value.
func (d *Reader) Buffered() int {
	return len(d.buf) - d.off
}

func (d *Reader) fill() error {
	if d.off > 0 {
		d.consumed += int64(d.off)
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}

	if cap(d.buf)-len(d.buf) < d.cfg.readSize {
		grown := make([]byte, len(d.buf), 2*cap(d.buf)+d.cfg.readSize)
		copy(grown, d.buf)
		d.buf = grown
	}

	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := d.r.Read(d.buf[len(d.buf):cap(d.buf)])
		d.buf = d.buf[:len(d.buf)+n]
		if n == 0 && err == nil {
			continue
		}
		d.cfg.debugf("bencode reader: read %d bytes, %d buffered at offset %d", n, len(d.buf), d.consumed)
		if errors.Is(err, io.EOF) {
			d.eof = true
			return nil
		}
		return err
	}
	return io.ErrNoProgress
}
