package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-bat/pkg/archive"
	"github.com/dd0wney/cluso-bat/pkg/logging"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

const maxLineBytes = 1 << 20

func runBuild(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("build", stderr)
	var g globalFlags
	g.register(fs)
	in := fs.String("in", "", "tab-separated input: <chapter>\\t<term> per line")
	out := fs.String("out", "", "archive to write")
	compress := fs.Bool("compress", false, "snappy-compress chapter contents")
	workers := fs.Int("workers", 0, "chapters encoded concurrently (default from config)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("build needs --in and --out")
	}

	s, err := g.open(fs, stderr)
	if err != nil {
		return err
	}
	defer s.close()
	if fs.Changed("compress") {
		s.cfg.CompressContents = *compress
	}
	if fs.Changed("workers") {
		s.cfg.Workers = *workers
		if err := s.cfg.Validate(); err != nil {
			return err
		}
	}

	src, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	a := archive.New()
	lines, err := loadTerms(src, a.Dictionary)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}
	s.log.Debug("terms loaded", logging.Path(*in), logging.Int("lines", lines))

	n, err := writeArchiveFile(ctx, *out, a, archive.EncodeOptions{
		Chapter: archive.ChapterOptions{Compress: s.cfg.CompressContents},
		Workers: s.cfg.Workers,
		Logger:  s.log,
		Metrics: s.metrics,
	})
	if err != nil {
		return err
	}

	var terms uint64
	codes := a.Dictionary.Codes()
	for _, code := range codes {
		b, _ := a.Dictionary.Chapter(code)
		terms += b.Count()
	}
	fmt.Fprintf(stdout, "wrote %s: %d terms in %d chapters, %d bytes, dataset %s\n",
		*out, terms, len(codes), n, a.Header.DatasetID)
	return nil
}

// loadTerms adds every "<chapter>\t<term>" line of r to d. Blank lines and
// lines starting with '#' are skipped.
func loadTerms(r io.Reader, d *archive.Dictionary) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		label, term, ok := bytes.Cut(text, []byte{'\t'})
		if !ok {
			return line, fmt.Errorf("line %d: missing tab between chapter and term", line)
		}
		code, ok := schema.ParseChapterLabel(string(label))
		if !ok {
			return line, fmt.Errorf("line %d: unknown chapter %q", line, label)
		}
		if _, err := d.Add(code, term); err != nil {
			return line, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return line, scanner.Err()
}

func writeArchiveFile(ctx context.Context, path string, a *archive.Archive, opts archive.EncodeOptions) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(f)
	n, err := archive.NewWriter(a, opts).Write(ctx, bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}
