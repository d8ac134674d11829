package schema

import "fmt"

// ChapterCode identifies an archive section. Codes are single bytes and are
// stable across archive versions.
type ChapterCode uint8

const (
	CodeHeader     ChapterCode = 0x01
	CodeDictionary ChapterCode = 0x02

	CodePrefixes ChapterCode = 0x10

	CodeHops         ChapterCode = 0x11
	CodeHopsAbsolute ChapterCode = 0x12
	CodeHopsPrefixed ChapterCode = 0x13

	CodeSubjects         ChapterCode = 0x14
	CodeSubjectsAbsolute ChapterCode = 0x15
	CodeSubjectsPrefixed ChapterCode = 0x16

	CodePredicates         ChapterCode = 0x17
	CodePredicatesAbsolute ChapterCode = 0x18
	CodePredicatesPrefixed ChapterCode = 0x19

	CodeObjects         ChapterCode = 0x1a
	CodeObjectsAbsolute ChapterCode = 0x1b
	CodeObjectsPrefixed ChapterCode = 0x1c

	CodeLiterals                  ChapterCode = 0x1d
	CodeLiteralsPlain             ChapterCode = 0x1e
	CodeLiteralsLanguaged         ChapterCode = 0x1f
	CodeLiteralsDatatyped         ChapterCode = 0x20
	CodeLiteralsDatatypedAbsolute ChapterCode = 0x21
	CodeLiteralsDatatypedPrefixed ChapterCode = 0x22
)

type chapterInfo struct {
	label  string
	parent ChapterCode
	group  bool
}

var chapters = map[ChapterCode]chapterInfo{
	CodeHeader:     {label: "header"},
	CodeDictionary: {label: "dictionary"},

	CodePrefixes: {label: "prefixes", parent: CodeDictionary},

	CodeHops:         {label: "hops", parent: CodeDictionary, group: true},
	CodeHopsAbsolute: {label: "hops_absolute", parent: CodeHops},
	CodeHopsPrefixed: {label: "hops_prefixed", parent: CodeHops},

	CodeSubjects:         {label: "subjects", parent: CodeDictionary, group: true},
	CodeSubjectsAbsolute: {label: "subjects_absolute", parent: CodeSubjects},
	CodeSubjectsPrefixed: {label: "subjects_prefixed", parent: CodeSubjects},

	CodePredicates:         {label: "predicates", parent: CodeDictionary, group: true},
	CodePredicatesAbsolute: {label: "predicates_absolute", parent: CodePredicates},
	CodePredicatesPrefixed: {label: "predicates_prefixed", parent: CodePredicates},

	CodeObjects:         {label: "objects", parent: CodeDictionary, group: true},
	CodeObjectsAbsolute: {label: "objects_absolute", parent: CodeObjects},
	CodeObjectsPrefixed: {label: "objects_prefixed", parent: CodeObjects},

	CodeLiterals:                  {label: "literals", parent: CodeDictionary, group: true},
	CodeLiteralsPlain:             {label: "literals_plain", parent: CodeLiterals},
	CodeLiteralsLanguaged:         {label: "literals_languaged", parent: CodeLiterals},
	CodeLiteralsDatatyped:         {label: "literals_datatyped", parent: CodeLiterals, group: true},
	CodeLiteralsDatatypedAbsolute: {label: "literals_datatyped_absolute", parent: CodeLiteralsDatatyped},
	CodeLiteralsDatatypedPrefixed: {label: "literals_datatyped_prefixed", parent: CodeLiteralsDatatyped},
}

var chaptersByLabel = func() map[string]ChapterCode {
	m := make(map[string]ChapterCode, len(chapters))
	for code, info := range chapters {
		m[info.label] = code
	}
	return m
}()

// ParseChapterLabel returns the code registered under label.
func ParseChapterLabel(label string) (ChapterCode, bool) {
	code, ok := chaptersByLabel[label]
	return code, ok
}

// Valid reports whether c is a registered code.
func (c ChapterCode) Valid() bool {
	_, ok := chapters[c]
	return ok
}

// Label returns the canonical container label, or "" for unknown codes.
func (c ChapterCode) Label() string {
	return chapters[c].label
}

// String returns the label, falling back to the hex code.
func (c ChapterCode) String() string {
	if info, ok := chapters[c]; ok {
		return info.label
	}
	return fmt.Sprintf("chapter(0x%02x)", uint8(c))
}

// IsGroup reports whether the chapter holds child chapters rather than terms.
func (c ChapterCode) IsGroup() bool {
	return chapters[c].group
}

// IsTermChapter reports whether the chapter directly stores terms.
func (c ChapterCode) IsTermChapter() bool {
	info, ok := chapters[c]
	return ok && !info.group && c != CodeHeader && c != CodeDictionary
}

// Parent returns the enclosing chapter. The header and dictionary have none.
func (c ChapterCode) Parent() (ChapterCode, bool) {
	info, ok := chapters[c]
	if !ok || info.parent == 0 {
		return 0, false
	}
	return info.parent, true
}

// Scheme returns the encoding-scheme IRI paired with the code.
func (c ChapterCode) Scheme() string {
	switch {
	case c == CodeHeader:
		return EncodingDataset
	case c == CodeDictionary:
		return EncodingDictionaryPP12OC
	case c.IsGroup():
		return EncodingChapterGroup
	case c.IsTermChapter():
		return EncodingChapterIC
	default:
		return ""
	}
}

// TermChapters lists every term-holding chapter in code order.
func TermChapters() []ChapterCode {
	out := make([]ChapterCode, 0, 13)
	for c := CodePrefixes; c <= CodeLiteralsDatatypedPrefixed; c++ {
		if c.IsTermChapter() {
			out = append(out, c)
		}
	}
	return out
}

// Children lists the direct child chapters of a group (or of the dictionary)
// in code order.
func (c ChapterCode) Children() []ChapterCode {
	var out []ChapterCode
	for code := CodePrefixes; code <= CodeLiteralsDatatypedPrefixed; code++ {
		if chapters[code].parent == c {
			out = append(out, code)
		}
	}
	return out
}
