package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

func TestChapterBuilderAssignsDenseKeys(t *testing.T) {
	b, err := NewChapterBuilder(schema.CodeSubjectsAbsolute)
	require.NoError(t, err)

	for i, term := range []string{"c", "a", "b"} {
		k, err := b.Add([]byte(term))
		require.NoError(t, err)
		assert.Equal(t, keyspace.Key(i), k)
	}
	k, err := b.Add([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, keyspace.Key(1), k, "duplicate keeps its first key")
	assert.Equal(t, uint64(3), b.Count())
}

func TestChapterBuilderRejectsGroups(t *testing.T) {
	_, err := NewChapterBuilder(schema.CodeSubjects)
	assert.ErrorIs(t, err, ErrNotTermChapter)

	_, err = NewChapterBuilder(schema.CodeDictionary)
	assert.ErrorIs(t, err, ErrNotTermChapter)
}

func TestChapterBuilderSeal(t *testing.T) {
	b, err := NewChapterBuilder(schema.CodeObjectsPrefixed)
	require.NoError(t, err)

	_, err = b.KeySpace()
	assert.ErrorIs(t, err, ErrNotSealed)
	_, err = b.AppendKey(nil, []byte("x"))
	assert.ErrorIs(t, err, ErrNotSealed)

	for i := 0; i < 300; i++ {
		_, err := b.Add([]byte(fmt.Sprintf("term-%d", i)))
		require.NoError(t, err)
	}
	ks, err := b.Seal()
	require.NoError(t, err)
	assert.Equal(t, 2, ks.Width)
	assert.True(t, b.Sealed())

	_, err = b.Add([]byte("late"))
	assert.ErrorIs(t, err, ErrSealed)

	k, err := b.Add([]byte("term-7"))
	require.NoError(t, err, "known terms resolve after seal")
	assert.Equal(t, keyspace.Key(7), k)

	slot, err := b.AppendKey(nil, []byte("term-0"))
	require.NoError(t, err)
	assert.Equal(t, []byte{schema.TokenPrefixFollows, 0x04}, slot)

	_, err = b.AppendKey(nil, []byte("missing"))
	assert.ErrorIs(t, err, ErrTermNotFound)

	again, err := b.Seal()
	require.NoError(t, err)
	assert.Equal(t, ks, again)
}

func buildChapter(t *testing.T, code schema.ChapterCode, terms []string) *ChapterBuilder {
	t.Helper()
	b, err := NewChapterBuilder(code)
	require.NoError(t, err)
	for _, term := range terms {
		_, err := b.Add([]byte(term))
		require.NoError(t, err)
	}
	return b
}

func TestChapterEncodeLayout(t *testing.T) {
	b := buildChapter(t, schema.CodePredicatesAbsolute, []string{"zz", "aa", "mm"})
	c, err := b.Encode(ChapterOptions{})
	require.NoError(t, err)
	assert.Equal(t, schema.EncodingChapterIC, c.Scheme)
	assert.Equal(t, "predicates_absolute", c.Label)

	count, n := binary.Uvarint(c.Payload)
	require.Positive(t, n)
	assert.Equal(t, uint64(3), count)

	sections, err := container.NewDecoder(c.Payload[n:]).All()
	require.NoError(t, err)
	require.Len(t, sections, 2)

	indices := sections[0]
	assert.Equal(t, schema.EncodingIndicesDirect, indices.Scheme)
	assert.Equal(t, schema.LabelIndices, indices.Label)
	// aa=1, mm=2, zz=0 in one-byte slots
	assert.Equal(t, []byte{0x05, 0x06, 0x04}, indices.Payload)

	contents := sections[1]
	assert.Equal(t, schema.EncodingContentsPlain, contents.Scheme)
	assert.Equal(t, []byte("\x02zz\x02aa\x02mm"), contents.Payload)
}

func TestChapterRoundTrip(t *testing.T) {
	terms := make([]string, 0, 400)
	for i := 399; i >= 0; i-- {
		terms = append(terms, fmt.Sprintf("http://example.org/r/%03d", i))
	}
	terms = append(terms, "")

	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress=%v", compress), func(t *testing.T) {
			b := buildChapter(t, schema.CodeLiteralsPlain, terms)
			c, err := b.Encode(ChapterOptions{Compress: compress})
			require.NoError(t, err)

			raw, err := container.Encode(c)
			require.NoError(t, err)
			parsed, err := container.NewDecoder(raw).Child()
			require.NoError(t, err)

			v, err := ParseChapter(parsed)
			require.NoError(t, err)
			assert.Equal(t, schema.CodeLiteralsPlain, v.Code())
			assert.Equal(t, uint64(len(terms)), v.Count())
			assert.Equal(t, 2, v.KeySpace().Width)

			for i, term := range terms {
				got, err := v.Term(keyspace.Key(i))
				require.NoError(t, err)
				assert.Equal(t, term, string(got))

				k, err := v.Lookup([]byte(term))
				require.NoError(t, err)
				assert.Equal(t, keyspace.Key(i), k)
			}

			_, err = v.Lookup([]byte("http://example.org/r/400"))
			assert.ErrorIs(t, err, ErrTermNotFound)
			_, err = v.Term(keyspace.Key(len(terms)))
			assert.ErrorIs(t, err, keyspace.ErrKeyOutOfRange)

			seen := 0
			v.Terms(func(k keyspace.Key, term []byte) bool {
				seen++
				return k < 9
			})
			assert.Equal(t, 10, seen)

			assert.Equal(t, 2, v.KeySpace().Width)
			var next keyspace.Key
			err = v.Entries(func(k keyspace.Key, slot, term []byte) bool {
				assert.Equal(t, next, k)
				want, err := v.KeySpace().AppendEncode(nil, k)
				require.NoError(t, err)
				assert.Equal(t, want, slot)
				assert.Equal(t, terms[k], string(term))
				next++
				return true
			})
			require.NoError(t, err)
			assert.Equal(t, keyspace.Key(len(terms)), next)
		})
	}
}

func chapterPayload(count uint64, sections ...container.Container) []byte {
	payload := binary.AppendUvarint(nil, count)
	for _, s := range sections {
		payload, _ = container.Append(payload, s)
	}
	return payload
}

func TestParseChapterMalformed(t *testing.T) {
	indices := func(p ...byte) container.Container {
		return container.Container{Scheme: schema.EncodingIndicesDirect, Label: schema.LabelIndices, Payload: p}
	}
	contents := func(p string) container.Container {
		return container.Container{Scheme: schema.EncodingContentsPlain, Label: schema.LabelContents, Payload: []byte(p)}
	}

	tests := []struct {
		name  string
		c     container.Container
		cause error
	}{
		{
			name:  "unknown label",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "nope"},
			cause: ErrUnknownChapter,
		},
		{
			name:  "group label",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "subjects"},
			cause: ErrUnknownChapter,
		},
		{
			name:  "wrong scheme",
			c:     container.Container{Scheme: schema.EncodingContentsPFC, Label: "prefixes"},
			cause: ErrUnsupportedEncoding,
		},
		{
			name:  "missing count",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes"},
			cause: ErrMalformedChapter,
		},
		{
			name:  "short indices",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(2, indices(0x04), contents("\x01a\x01b"))},
			cause: ErrMalformedChapter,
		},
		{
			name:  "term count mismatch",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(2, indices(0x04, 0x05), contents("\x01a"))},
			cause: ErrMalformedChapter,
		},
		{
			name:  "truncated term",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(1, indices(0x04), contents("\x05ab"))},
			cause: ErrMalformedChapter,
		},
		{
			name:  "missing contents",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(1, indices(0x04))},
			cause: ErrMalformedChapter,
		},
		{
			name: "unknown contents scheme",
			c: container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(1, indices(0x04),
				container.Container{Scheme: schema.EncodingContentsPFC, Label: schema.LabelContents, Payload: []byte("x")})},
			cause: ErrUnsupportedEncoding,
		},
		{
			name:  "huge count with contents first",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(4_000_000_000, contents("\x01a"))},
			cause: ErrMalformedChapter,
		},
		{
			name: "snappy length beyond expansion bound",
			c: container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: chapterPayload(1, indices(0x04),
				container.Container{Scheme: schema.EncodingContentsSnappy, Label: schema.LabelContents, Payload: []byte{0x80, 0x80, 0x80, 0x80, 0x04}})},
			cause: ErrMalformedChapter,
		},
		{
			name:  "framing error",
			c:     container.Container{Scheme: schema.EncodingChapterIC, Label: "prefixes", Payload: []byte{0x01, 'n', 'o'}},
			cause: container.ErrUnterminatedHeader,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChapter(tt.c)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.cause)

			var ae *ArchiveError
			assert.ErrorAs(t, err, &ae)
		})
	}
}

func TestLookupRejectsReservedSlot(t *testing.T) {
	c := container.Container{
		Scheme: schema.EncodingChapterIC,
		Label:  "prefixes",
		Payload: chapterPayload(1,
			container.Container{Scheme: schema.EncodingIndicesDirect, Label: schema.LabelIndices, Payload: []byte{0x02}},
			container.Container{Scheme: schema.EncodingContentsPlain, Label: schema.LabelContents, Payload: []byte("\x01a")}),
	}
	v, err := ParseChapter(c)
	require.NoError(t, err)

	_, err = v.Lookup([]byte("a"))
	assert.ErrorIs(t, err, keyspace.ErrReservedByte)
}

func TestSnappyContentsAreSmaller(t *testing.T) {
	terms := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		terms = append(terms, "http://example.org/a/very/long/shared/prefix/"+fmt.Sprint(i))
	}
	plain, err := buildChapter(t, schema.CodeHopsAbsolute, terms).Encode(ChapterOptions{})
	require.NoError(t, err)
	packed, err := buildChapter(t, schema.CodeHopsAbsolute, terms).Encode(ChapterOptions{Compress: true})
	require.NoError(t, err)

	assert.Less(t, len(packed.Payload), len(plain.Payload))
	assert.True(t, bytes.Contains(packed.Payload, []byte(schema.EncodingContentsSnappy)))
}
