package archive

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
	"github.com/dd0wney/cluso-bat/pkg/logging"
	"github.com/dd0wney/cluso-bat/pkg/metrics"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

// Dictionary holds one builder per term chapter.
type Dictionary struct {
	chapters map[schema.ChapterCode]*ChapterBuilder
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{chapters: make(map[schema.ChapterCode]*ChapterBuilder)}
}

// Chapter returns the builder for code, creating it on first use. Group codes
// are rejected.
func (d *Dictionary) Chapter(code schema.ChapterCode) (*ChapterBuilder, error) {
	if b, ok := d.chapters[code]; ok {
		return b, nil
	}
	b, err := NewChapterBuilder(code)
	if err != nil {
		return nil, err
	}
	d.chapters[code] = b
	return b, nil
}

// Add adds term to the chapter identified by code.
func (d *Dictionary) Add(code schema.ChapterCode, term []byte) (keyspace.Key, error) {
	b, err := d.Chapter(code)
	if err != nil {
		return 0, err
	}
	return b.Add(term)
}

// Codes lists the chapters that hold a builder, in code order.
func (d *Dictionary) Codes() []schema.ChapterCode {
	codes := make([]schema.ChapterCode, 0, len(d.chapters))
	for code := range d.chapters {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// EncodeOptions controls dictionary serialization.
type EncodeOptions struct {
	Chapter ChapterOptions

	// Workers bounds the chapters encoded concurrently; zero means one per
	// chapter.
	Workers int

	Logger  logging.Logger
	Metrics *metrics.Registry
}

func (o EncodeOptions) logger() logging.Logger {
	if o.Logger == nil {
		return logging.NopLogger{}
	}
	return o.Logger
}

// Encode seals every chapter and returns the dictionary container. Chapters
// are encoded concurrently, each by exactly one goroutine. Empty chapters and
// groups without chapters are omitted.
func (d *Dictionary) Encode(ctx context.Context, opts EncodeOptions) (container.Container, error) {
	log := opts.logger().With(logging.Component("dictionary"))

	codes := d.Codes()
	encoded := make(map[schema.ChapterCode]container.Container, len(codes))
	results := make([]container.Container, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, code := range codes {
		i, code := i, code // per-iteration copies; go.mod targets go1.21 (pre-1.22 loop semantics)
		b := d.chapters[code]
		if b.Count() == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := b.Encode(opts.Chapter)
			if err != nil {
				return err
			}
			results[i] = c
			ks, _ := b.KeySpace()
			if opts.Metrics != nil {
				opts.Metrics.RecordChapterSealed(code.Label(), b.Count(), ks.Width)
			}
			log.Debug("chapter sealed",
				logging.Chapter(code.Label()),
				logging.Count(b.Count()),
				logging.Width(ks.Width),
				logging.Bytes(int64(len(c.Payload))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return container.Container{}, err
	}
	for i, code := range codes {
		if d.chapters[code].Count() > 0 {
			encoded[code] = results[i]
		}
	}

	payload, err := nest(schema.CodeDictionary, encoded)
	if err != nil {
		return container.Container{}, &ArchiveError{Op: "encode dictionary", Cause: err}
	}
	return container.Container{
		Scheme:  schema.CodeDictionary.Scheme(),
		Label:   schema.CodeDictionary.Label(),
		Payload: payload,
	}, nil
}

// nest concatenates the encoded children of parent in code order, wrapping
// grouped chapters in their group containers.
func nest(parent schema.ChapterCode, encoded map[schema.ChapterCode]container.Container) ([]byte, error) {
	var payload []byte
	for _, code := range parent.Children() {
		var (
			c   container.Container
			err error
		)
		if code.IsGroup() {
			var inner []byte
			inner, err = nest(code, encoded)
			if err != nil {
				return nil, err
			}
			if len(inner) == 0 {
				continue
			}
			c = container.Container{Scheme: code.Scheme(), Label: code.Label(), Payload: inner}
		} else {
			var ok bool
			if c, ok = encoded[code]; !ok {
				continue
			}
		}
		payload, err = container.Append(payload, c)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// DictionaryView is a parsed dictionary. Chapters with unrecognized schemes
// are skipped.
type DictionaryView struct {
	chapters map[schema.ChapterCode]*ChapterView
	skipped  []container.Container
}

// ParseDictionary decodes a dictionary container.
func ParseDictionary(c container.Container) (*DictionaryView, error) {
	if c.Scheme != schema.EncodingDictionaryPP12OC {
		return nil, &ArchiveError{Op: "parse dictionary", Context: c.Scheme, Cause: ErrUnsupportedEncoding}
	}
	v := &DictionaryView{chapters: make(map[schema.ChapterCode]*ChapterView)}
	if err := v.walk(c); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *DictionaryView) walk(parent container.Container) error {
	children := parent.Children()
	for !children.Finished() {
		c, err := children.Child()
		if err != nil {
			return &ArchiveError{Op: "parse dictionary", Context: parent.Label, Cause: err}
		}
		switch c.Scheme {
		case schema.EncodingChapterGroup:
			if err := v.walk(c); err != nil {
				return err
			}
		case schema.EncodingChapterIC:
			ch, err := ParseChapter(c)
			if err != nil {
				return err
			}
			if _, dup := v.chapters[ch.Code()]; dup {
				return chapterError("parse dictionary", ch.Code(), ErrDuplicateChapter)
			}
			v.chapters[ch.Code()] = ch
		default:
			v.skipped = append(v.skipped, c)
		}
	}
	return nil
}

// Chapter returns the parsed chapter for code.
func (v *DictionaryView) Chapter(code schema.ChapterCode) (*ChapterView, bool) {
	ch, ok := v.chapters[code]
	return ch, ok
}

// Codes lists the parsed chapters in code order.
func (v *DictionaryView) Codes() []schema.ChapterCode {
	codes := make([]schema.ChapterCode, 0, len(v.chapters))
	for code := range v.chapters {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Skipped returns the containers whose scheme the dictionary did not
// recognize.
func (v *DictionaryView) Skipped() []container.Container {
	return v.skipped
}
