package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huandu/xstrings"

	"github.com/OLUWAMUYIWA/benc/formats"
)

// byte strings longer than this that aren't text are only summarized
const hexPreview = 32

type printer struct {
	w   io.Writer
	raw bool
}

func (p *printer) print(n formats.Node) {
	p.write("", n, 0)
}

func (p *printer) write(prefix string, n formats.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	switch n.Kind() {
	case formats.KindList:
		items, _ := n.List()
		fmt.Fprintf(p.w, "%s%slist (%d)\n", pad, prefix, len(items))
		for _, item := range items {
			p.write("", item, depth+1)
		}
	case formats.KindDict:
		pairs, _ := n.Dict()
		fmt.Fprintf(p.w, "%s%sdict (%d)\n", pad, prefix, len(pairs))
		keys := make([]string, len(pairs))
		width := 0
		for i, pair := range pairs {
			if pair.Key.Kind() == formats.KindList || pair.Key.Kind() == formats.KindDict {
				keys[i] = pair.Key.String()
			} else {
				keys[i] = p.scalar(pair.Key)
			}
			if l := xstrings.Len(keys[i]); l > width {
				width = l
			}
		}
		for i, pair := range pairs {
			p.write(xstrings.LeftJustify(keys[i], width, " ")+"  ", pair.Value, depth+1)
		}
	default:
		fmt.Fprintf(p.w, "%s%s%s\n", pad, prefix, p.scalar(n))
	}
}

func (p *printer) scalar(n formats.Node) string {
	if i, ok := n.Int(); ok {
		return strconv.FormatInt(i, 10)
	}
	b, _ := n.Bytes()
	switch {
	case !p.raw && isText(b):
		return strconv.Quote(string(b))
	case p.raw || len(b) <= hexPreview:
		return "0x" + hex.EncodeToString(b)
	default:
		return fmt.Sprintf("<%d bytes>", len(b))
	}
}

func isText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
