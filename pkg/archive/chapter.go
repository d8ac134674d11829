package archive

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
	"github.com/dd0wney/cluso-bat/pkg/pools"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

// ChapterBuilder collects the distinct terms of one chapter. Keys are dense
// and assigned in first-insertion order. Once sealed, the chapter's key-space
// is fixed and no further terms are accepted.
//
// A ChapterBuilder is owned by one goroutine at a time.
type ChapterBuilder struct {
	code   schema.ChapterCode
	alloc  *keyspace.Allocator
	keys   map[string]keyspace.Key
	terms  [][]byte
	sealed bool
	space  keyspace.KeySpace
}

// NewChapterBuilder returns an empty builder for a term-holding chapter.
func NewChapterBuilder(code schema.ChapterCode) (*ChapterBuilder, error) {
	if !code.IsTermChapter() {
		return nil, chapterError("new chapter", code, ErrNotTermChapter)
	}
	return &ChapterBuilder{
		code:  code,
		alloc: keyspace.NewAllocator(),
		keys:  make(map[string]keyspace.Key),
	}, nil
}

// Code returns the chapter code.
func (b *ChapterBuilder) Code() schema.ChapterCode {
	return b.code
}

// Add returns the key of term, assigning the next key on first sight.
func (b *ChapterBuilder) Add(term []byte) (keyspace.Key, error) {
	if k, ok := b.keys[string(term)]; ok {
		return k, nil
	}
	if b.sealed {
		return 0, chapterError("add", b.code, ErrSealed)
	}
	k, err := b.alloc.Take()
	if err != nil {
		return 0, chapterError("add", b.code, err)
	}
	owned := bytes.Clone(term)
	if owned == nil {
		owned = []byte{}
	}
	b.keys[string(owned)] = k
	b.terms = append(b.terms, owned)
	return k, nil
}

// Key returns the key already assigned to term.
func (b *ChapterBuilder) Key(term []byte) (keyspace.Key, bool) {
	k, ok := b.keys[string(term)]
	return k, ok
}

// Count returns the number of distinct terms.
func (b *ChapterBuilder) Count() uint64 {
	return uint64(len(b.terms))
}

// Sealed reports whether Seal has been called.
func (b *ChapterBuilder) Sealed() bool {
	return b.sealed
}

// Seal fixes the chapter's key-space from its final term count. Sealing twice
// returns the same key-space.
func (b *ChapterBuilder) Seal() (keyspace.KeySpace, error) {
	if b.sealed {
		return b.space, nil
	}
	ks, err := keyspace.ForCount(b.Count())
	if err != nil {
		return keyspace.KeySpace{}, chapterError("seal", b.code, err)
	}
	b.space = ks
	b.sealed = true
	return ks, nil
}

// KeySpace returns the sealed key-space.
func (b *ChapterBuilder) KeySpace() (keyspace.KeySpace, error) {
	if !b.sealed {
		return keyspace.KeySpace{}, chapterError("key space", b.code, ErrNotSealed)
	}
	return b.space, nil
}

// AppendKey appends the fixed-width slot of term's key to dst. The chapter
// must be sealed.
func (b *ChapterBuilder) AppendKey(dst, term []byte) ([]byte, error) {
	if !b.sealed {
		return dst, chapterError("append key", b.code, ErrNotSealed)
	}
	k, ok := b.keys[string(term)]
	if !ok {
		return dst, chapterError("append key", b.code, ErrTermNotFound)
	}
	return b.space.AppendEncode(dst, k)
}

// ChapterOptions controls how a sealed chapter is serialized.
type ChapterOptions struct {
	// Compress stores the contents section snappy-compressed.
	Compress bool
}

// Encode seals the chapter if needed and returns its container.
//
// Payload layout: uvarint term count, then an indices container holding one
// key slot per term in byte-wise term order, then a contents container
// holding the length-prefixed terms in key order.
func (b *ChapterBuilder) Encode(opts ChapterOptions) (container.Container, error) {
	ks, err := b.Seal()
	if err != nil {
		return container.Container{}, err
	}

	indices, err := b.encodeIndices(ks)
	if err != nil {
		return container.Container{}, chapterError("encode indices", b.code, err)
	}
	contents := b.encodeContents(opts.Compress)

	payload := binary.AppendUvarint(nil, b.Count())
	payload, err = container.Append(payload, indices)
	if err != nil {
		return container.Container{}, chapterError("encode", b.code, err)
	}
	payload, err = container.Append(payload, contents)
	if err != nil {
		return container.Container{}, chapterError("encode", b.code, err)
	}
	return container.Container{
		Scheme:  schema.EncodingChapterIC,
		Label:   b.code.Label(),
		Payload: payload,
	}, nil
}

func (b *ChapterBuilder) encodeIndices(ks keyspace.KeySpace) (container.Container, error) {
	order := make([]keyspace.Key, len(b.terms))
	for i := range order {
		order[i] = keyspace.Key(i)
	}
	sort.Slice(order, func(i, j int) bool {
		return bytes.Compare(b.terms[order[i]], b.terms[order[j]]) < 0
	})

	slots := make([]byte, 0, len(order)*ks.Width)
	var err error
	for _, k := range order {
		slots, err = ks.AppendEncode(slots, k)
		if err != nil {
			return container.Container{}, err
		}
	}
	return container.Container{
		Scheme:  schema.EncodingIndicesDirect,
		Label:   schema.LabelIndices,
		Payload: slots,
	}, nil
}

func (b *ChapterBuilder) encodeContents(compress bool) container.Container {
	size := 0
	for _, t := range b.terms {
		size += binary.MaxVarintLen32 + len(t)
	}
	var plain []byte
	if compress {
		plain = pools.GetBytes(size)
		defer func() { pools.PutBytes(plain) }()
	} else {
		plain = make([]byte, 0, size)
	}
	for _, t := range b.terms {
		plain = binary.AppendUvarint(plain, uint64(len(t)))
		plain = append(plain, t...)
	}
	if compress {
		return container.Container{
			Scheme:  schema.EncodingContentsSnappy,
			Label:   schema.LabelContents,
			Payload: snappy.Encode(nil, plain),
		}
	}
	return container.Container{
		Scheme:  schema.EncodingContentsPlain,
		Label:   schema.LabelContents,
		Payload: plain,
	}
}
