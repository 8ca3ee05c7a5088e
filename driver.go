package main

import (
	"bytes"
	"io"
	"os"

	"github.com/anacrolix/log"
	"github.com/anacrolix/missinggo/perf"
	"github.com/anacrolix/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/OLUWAMUYIWA/benc/formats"
)

type driver struct {
	log.Logger

	verbose  bool
	maxDepth int
	raw      bool
	perf     bool
}

func newDriver() *driver {
	return &driver{
		Logger:   log.Default,
		maxDepth: formats.DefaultMaxDepth,
	}
}

// Drive runs the command line. Errors are logged here and returned for the exit status.
func (d *driver) Drive(args []string) error {
	cmd := d.command()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		d.Log(log.Fmsg("%v", err).SetLevel(log.Error))
		return err
	}
	return nil
}

func (d *driver) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "benc",
		Short:         "Inspect bencoded data and .torrent files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.Info
			if d.verbose {
				level = log.Debug
			}
			d.Logger = d.Logger.FilterLevel(level)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if d.perf {
				perf.WriteEventsTable(cmd.ErrOrStderr())
			}
		},
	}
	flags := root.PersistentFlags()
	flags.BoolVarP(&d.verbose, "verbose", "v", false, "log debug messages")
	flags.IntVar(&d.maxDepth, "max-depth", formats.DefaultMaxDepth, "deepest nesting to decode")
	flags.BoolVar(&d.perf, "perf", false, "print timings when done")

	dump := &cobra.Command{
		Use:   "dump [file]",
		Short: "Print every bencoded value in a file, or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			name := "stdin"
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in, name = f, args[0]
			}
			return d.dump(cmd.OutOrStdout(), in, name)
		},
	}
	dump.Flags().BoolVar(&d.raw, "raw", false, "print every byte string as hex")

	info := &cobra.Command{
		Use:   "info file...",
		Short: "Summarize .torrent files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.info(cmd.OutOrStdout(), args)
		},
	}

	root.AddCommand(dump, info)
	return root
}

func (d *driver) dump(w io.Writer, in io.Reader, name string) error {
	defer perf.ScopeTimer()()

	r := formats.NewReader(in, formats.WithMaxDepth(d.maxDepth), formats.WithLogger(d.Logger))
	p := &printer{w: w, raw: d.raw}
	count := 0
	for {
		n, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "decoding %s", name)
		}
		p.print(n)
		count++
	}
	d.Log(log.Fmsg("%s: %d values, %d bytes", name, count, r.Offset()).SetLevel(log.Debug))
	return nil
}

// info loads every file concurrently. Summaries are written whole, one file at a time.
func (d *driver) info(w io.Writer, paths []string) error {
	var mu sync.Mutex
	errs := make(chan error, len(paths))
	for _, path := range paths {
		go func(path string) {
			t, err := NewTorrent(path)
			if err != nil {
				errs <- err
				return
			}
			var b bytes.Buffer
			t.Summary(&b)
			mu.Lock()
			defer mu.Unlock()
			_, err = w.Write(b.Bytes())
			errs <- err
		}(path)
	}

	var first error
	for range paths {
		if err := <-errs; err != nil {
			d.Log(log.Fmsg("%v", err).SetLevel(log.Warning))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
