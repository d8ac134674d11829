package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-bat/pkg/archive"
	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
	"github.com/dd0wney/cluso-bat/pkg/logging"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

// mapArchive memory-maps path and returns a sequential reader over the
// mapping. Containers read through it are copied out of the mapping.
func mapArchive(path string) (*mmap.ReaderAt, io.Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return m, io.NewSectionReader(m, 0, int64(m.Len())), nil
}

func runInspect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	var g globalFlags
	g.register(fs)
	showTerms := fs.Bool("terms", false, "list every chapter term with its slot code")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	pos, err := requireArgs(fs, 1, "inspect <archive>")
	if err != nil {
		return err
	}

	s, err := g.open(fs, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	m, r, err := mapArchive(pos[0])
	if err != nil {
		return err
	}
	defer m.Close()
	s.log.Debug("archive mapped", logging.Path(pos[0]), logging.Bytes(int64(m.Len())))

	cr := container.NewReader(r, s.cfg.ReaderOptions()...)
	for {
		c, err := cr.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.metrics.RecordFramingError(err)
			return err
		}
		s.metrics.RecordContainerRead(c.Scheme, len(c.Payload))
		if err := printTree(stdout, c, 0, *showTerms); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "%d bytes\n", cr.Offset())
	return nil
}

// printTree writes one line per container, descending into groups, the
// dictionary and chapter sections. With showTerms each chapter also lists its
// terms in key order.
func printTree(w io.Writer, c container.Container, depth int, showTerms bool) error {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s @%d  %s  %d bytes", indent, displayLabel(c.Label), c.Offset(), c.Scheme, len(c.Payload))

	switch c.Scheme {
	case schema.EncodingDataset:
		h, err := archive.ParseHeader(c)
		if err != nil {
			fmt.Fprintln(w)
			return err
		}
		fmt.Fprintf(w, "  version=%d dataset=%s\n", h.Version, h.DatasetID)
		return nil

	case schema.EncodingDictionaryPP12OC, schema.EncodingChapterGroup:
		fmt.Fprintln(w)
		return printChildren(w, c.Children(), depth+1, showTerms)

	case schema.EncodingChapterIC:
		ch, err := archive.ParseChapter(c)
		if err != nil {
			fmt.Fprintln(w)
			return err
		}
		fmt.Fprintf(w, "  terms=%d key_width=%d\n", ch.Count(), ch.KeySpace().Width)
		_, n := binary.Uvarint(c.Payload)
		if err := printChildren(w, container.NewDecoderAt(c.Payload[n:], c.Offset()+int64(n)), depth+1, false); err != nil {
			return err
		}
		if !showTerms {
			return nil
		}
		pad := strings.Repeat("  ", depth+1)
		return ch.Entries(func(k keyspace.Key, slot, term []byte) bool {
			fmt.Fprintf(w, "%s%d\t%x\t%q\n", pad, k, slot, term)
			return true
		})

	default:
		fmt.Fprintln(w)
		return nil
	}
}

func printChildren(w io.Writer, d *container.Decoder, depth int, showTerms bool) error {
	for !d.Finished() {
		child, err := d.Child()
		if err != nil {
			return err
		}
		if err := printTree(w, child, depth, showTerms); err != nil {
			return err
		}
	}
	return nil
}

func displayLabel(label string) string {
	if label == "" {
		return "(unlabelled)"
	}
	return label
}
