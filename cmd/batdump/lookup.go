package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-bat/pkg/archive"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

func runLookup(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("lookup", stderr)
	var g globalFlags
	g.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	pos, err := requireArgs(fs, 3, "lookup <archive> <chapter> <term>")
	if err != nil {
		return err
	}
	code, ok := schema.ParseChapterLabel(pos[1])
	if !ok || !code.IsTermChapter() {
		return fmt.Errorf("unknown term chapter %q", pos[1])
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

	view, err := archive.ReadArchive(ctx, r, archive.ReadOptions{
		Reader:  s.cfg.ReaderOptions(),
		Logger:  s.log,
		Metrics: s.metrics,
	})
	if err != nil {
		return err
	}
	ch, ok := view.Dictionary.Chapter(code)
	if !ok {
		return fmt.Errorf("archive has no %s chapter", code)
	}
	k, err := ch.Lookup([]byte(pos[2]))
	if err != nil {
		s.metrics.RecordCodecError(err)
		return err
	}
	slot, err := ch.KeySpace().Encode(k)
	if err != nil {
		s.metrics.RecordCodecError(err)
		return err
	}
	fmt.Fprintf(stdout, "%s\t%d\t%x\n", code, k, slot)
	return nil
}
