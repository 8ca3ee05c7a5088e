package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anacrolix/missinggo/perf"
	"github.com/huandu/xstrings"
	"github.com/pkg/errors"

	"github.com/OLUWAMUYIWA/benc/formats"
)

type Torrent struct {
	mInfo *formats.MetaInfo
	path  string
}

func NewTorrent(torrPath string) (*Torrent, error) {
	defer perf.ScopeTimer()()

	buf, err := os.ReadFile(torrPath)
	if err != nil {
		return nil, err
	}
	m, err := formats.ParseMetaInfo(buf)
	if err != nil {
		return nil, errors.Wrap(err, torrPath)
	}
	return &Torrent{mInfo: m, path: torrPath}, nil
}

const labelWidth = 14

func field(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "%s %v\n", xstrings.LeftJustify(label+":", labelWidth, " "), value)
}

// Summary prints what a user would want to know before downloading
func (t *Torrent) Summary(w io.Writer) {
	m := t.mInfo
	fmt.Fprintf(w, "%s\n", t.path)
	field(w, "Name", m.Info.Name)
	field(w, "Info hash", m.InfoHash)
	if m.Announce != "" {
		field(w, "Announce", m.Announce)
	}
	for i, tier := range m.AnnounceList {
		field(w, fmt.Sprintf("Tier %d", i), strings.Join(tier, " "))
	}
	if !m.CreationDate.IsZero() {
		field(w, "Created", m.CreationDate.Format(time.RFC3339))
	}
	if m.CreatedBy != "" {
		field(w, "Created by", m.CreatedBy)
	}
	if m.Comment != "" {
		field(w, "Comment", m.Comment)
	}
	if m.Info.Private {
		field(w, "Private", "yes")
	}
	field(w, "Pieces", fmt.Sprintf("%d x %d bytes (%d blocks each)", m.NumPieces(), m.Info.PieceLen, m.NumBlocksInPiece(0)))
	field(w, "Total size", m.TotalLength())
	for _, f := range m.Info.Files {
		field(w, "File", fmt.Sprintf("%s (%d bytes)", strings.Join(f.Path, "/"), f.Length))
	}
}
