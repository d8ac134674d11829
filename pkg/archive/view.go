package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

// maxSnappyExpansion bounds the decoded size of a snappy block relative to
// its encoded size. No snappy element expands by more than 22x.
const maxSnappyExpansion = 32

// ChapterView is a read-only, decoded chapter. Terms alias the buffer the
// chapter was parsed from unless the contents were compressed.
type ChapterView struct {
	code    schema.ChapterCode
	count   uint64
	space   keyspace.KeySpace
	indices []byte
	terms   [][]byte
}

// ParseChapter decodes a chapter container produced by ChapterBuilder.Encode.
func ParseChapter(c container.Container) (*ChapterView, error) {
	const op = "parse chapter"
	code, ok := schema.ParseChapterLabel(c.Label)
	if !ok || !code.IsTermChapter() {
		return nil, &ArchiveError{Op: op, Context: c.Label, Cause: ErrUnknownChapter}
	}
	if c.Scheme != schema.EncodingChapterIC {
		return nil, &ArchiveError{Op: op, Chapter: code, Context: c.Scheme, Cause: ErrUnsupportedEncoding}
	}

	count, n := binary.Uvarint(c.Payload)
	if n <= 0 {
		return nil, malformed(op, code, "term count at offset %d", c.Offset())
	}
	ks, err := keyspace.ForCount(count)
	if err != nil {
		return nil, chapterError(op, code, err)
	}

	v := &ChapterView{code: code, count: count, space: ks}
	sections := container.NewDecoderAt(c.Payload[n:], c.Offset()+int64(n))
	for !sections.Finished() {
		section, err := sections.Child()
		if err != nil {
			return nil, chapterError(op, code, err)
		}
		switch section.Label {
		case schema.LabelIndices:
			if err := v.setIndices(section); err != nil {
				return nil, err
			}
		case schema.LabelContents:
			if err := v.setContents(section); err != nil {
				return nil, err
			}
		}
	}
	if v.indices == nil && count > 0 {
		return nil, malformed(op, code, "missing %s section", schema.LabelIndices)
	}
	if v.terms == nil && count > 0 {
		return nil, malformed(op, code, "missing %s section", schema.LabelContents)
	}
	return v, nil
}

func (v *ChapterView) setIndices(c container.Container) error {
	const op = "parse indices"
	if c.Scheme != schema.EncodingIndicesDirect {
		return &ArchiveError{Op: op, Chapter: v.code, Context: c.Scheme, Cause: ErrUnsupportedEncoding}
	}
	if want := v.count * uint64(v.space.Width); uint64(len(c.Payload)) != want {
		return malformed(op, v.code, "expected %d bytes, found %d", want, len(c.Payload))
	}
	v.indices = c.Payload
	return nil
}

func (v *ChapterView) setContents(c container.Container) error {
	const op = "parse contents"
	raw := c.Payload
	switch c.Scheme {
	case schema.EncodingContentsPlain:
	case schema.EncodingContentsSnappy:
		size, err := snappy.DecodedLen(c.Payload)
		if err != nil {
			return &ArchiveError{Op: op, Chapter: v.code, Context: "snappy", Cause: err}
		}
		if uint64(size) > uint64(len(c.Payload))*maxSnappyExpansion {
			return malformed(op, v.code, "snappy block claims %d bytes from %d", size, len(c.Payload))
		}
		raw, err = snappy.Decode(nil, c.Payload)
		if err != nil {
			return &ArchiveError{Op: op, Chapter: v.code, Context: "snappy", Cause: err}
		}
	default:
		return &ArchiveError{Op: op, Chapter: v.code, Context: c.Scheme, Cause: ErrUnsupportedEncoding}
	}

	// every term carries at least a one-byte length prefix
	if v.count > uint64(len(raw)) {
		return malformed(op, v.code, "%d terms cannot fit in %d bytes", v.count, len(raw))
	}
	terms := make([][]byte, 0, v.count)
	off := 0
	for off < len(raw) {
		size, n := binary.Uvarint(raw[off:])
		if n <= 0 {
			return malformed(op, v.code, "term length at offset %d", off)
		}
		off += n
		if size > uint64(len(raw)-off) {
			return malformed(op, v.code, "term at offset %d needs %d bytes, %d remain", off, size, len(raw)-off)
		}
		terms = append(terms, raw[off:off+int(size)])
		off += int(size)
	}
	if uint64(len(terms)) != v.count {
		return malformed(op, v.code, "expected %d terms, found %d", v.count, len(terms))
	}
	v.terms = terms
	return nil
}

// Code returns the chapter code.
func (v *ChapterView) Code() schema.ChapterCode { return v.code }

// Count returns the number of terms.
func (v *ChapterView) Count() uint64 { return v.count }

// KeySpace returns the key-space the chapter's slots were written with.
func (v *ChapterView) KeySpace() keyspace.KeySpace { return v.space }

// Term returns the term stored under k.
func (v *ChapterView) Term(k keyspace.Key) ([]byte, error) {
	if uint64(k) >= v.count {
		return nil, &ArchiveError{
			Op:      "term",
			Chapter: v.code,
			Context: fmt.Sprintf("key %d", k),
			Cause:   keyspace.ErrKeyOutOfRange,
		}
	}
	return v.terms[k], nil
}

// Lookup finds the key of term by binary search over the indices slots.
func (v *ChapterView) Lookup(term []byte) (keyspace.Key, error) {
	w := v.space.Width
	var decodeErr error
	i := sort.Search(int(v.count), func(i int) bool {
		if decodeErr != nil {
			return true
		}
		k, err := v.slot(i, w)
		if err != nil {
			decodeErr = err
			return true
		}
		return bytes.Compare(v.terms[k], term) >= 0
	})
	if decodeErr != nil {
		return 0, decodeErr
	}
	if i < int(v.count) {
		k, err := v.slot(i, w)
		if err != nil {
			return 0, err
		}
		if bytes.Equal(v.terms[k], term) {
			return k, nil
		}
	}
	return 0, chapterError("lookup", v.code, ErrTermNotFound)
}

func (v *ChapterView) slot(i, w int) (keyspace.Key, error) {
	k, err := v.space.Decode(v.indices[i*w : (i+1)*w])
	if err != nil {
		return 0, chapterError("lookup", v.code, err)
	}
	if uint64(k) >= v.count {
		return 0, malformed("lookup", v.code, "slot %d holds key %d beyond %d terms", i, k, v.count)
	}
	return k, nil
}

// Terms calls fn for every term in key order until fn returns false.
func (v *ChapterView) Terms(fn func(k keyspace.Key, term []byte) bool) {
	for i, t := range v.terms {
		if !fn(keyspace.Key(i), t) {
			return
		}
	}
}

// Entries calls fn for every term in key order with the fixed-width slot code
// of its key, until fn returns false. slot is only valid during the call.
func (v *ChapterView) Entries(fn func(k keyspace.Key, slot, term []byte) bool) error {
	if v.count == 0 {
		return nil
	}
	alloc, err := keyspace.NewSlotAllocator(v.space)
	if err != nil {
		return chapterError("entries", v.code, err)
	}
	buf := make([]byte, 0, v.space.Width)
	for _, t := range v.terms {
		var k keyspace.Key
		buf, k, err = alloc.Next(buf[:0])
		if err != nil {
			return chapterError("entries", v.code, err)
		}
		if !fn(k, buf, t) {
			return nil
		}
	}
	return nil
}
