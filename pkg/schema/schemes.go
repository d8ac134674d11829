package schema

// EncodingBase is the namespace shared by every encoding-scheme IRI.
const EncodingBase = "http://bat-rdf.link/encoding/"

// Encoding-scheme IRIs. A container header carries one of these followed by
// '#' and the container label.
const (
	EncodingDataset          = EncodingBase + "dataset/partial-graph/1.0#"
	EncodingDictionary       = EncodingBase + "dictionary/twelve-section/1.0#"
	EncodingDictionaryPP12OC = EncodingBase + "dictionary/pointers-prefixes-12-optional-chapters/1.0#"
	EncodingTriplesBitmap    = EncodingBase + "triples/bitmap/1.0#"
	EncodingTriplesWavelet   = EncodingBase + "triples/wavelet/1.0#"
	EncodingChapterIC        = EncodingBase + "chapter/indices-contents/1.0#"
	EncodingIndicesDirect    = EncodingBase + "chapter-indices/direct/1.0#"
	EncodingContentsPFC      = EncodingBase + "chapter-contents/pointers-front-coded/1.0#"
	EncodingContentsPlain    = EncodingBase + "chapter-contents/length-prefixed/1.0#"
	EncodingContentsSnappy   = EncodingBase + "chapter-contents/length-prefixed-snappy/1.0#"
	EncodingChapterGroup     = EncodingBase + "chapter/group/1.0#"
)

// Container labels that are not chapter names.
const (
	LabelIndices  = "indices"
	LabelContents = "contents"
)

var knownEncodings = map[string]struct{}{
	EncodingDataset:          {},
	EncodingDictionary:       {},
	EncodingDictionaryPP12OC: {},
	EncodingTriplesBitmap:    {},
	EncodingTriplesWavelet:   {},
	EncodingChapterIC:        {},
	EncodingIndicesDirect:    {},
	EncodingContentsPFC:      {},
	EncodingContentsPlain:    {},
	EncodingContentsSnappy:   {},
	EncodingChapterGroup:     {},
}

// IsKnownEncoding reports whether scheme is one of the registered IRIs.
func IsKnownEncoding(scheme string) bool {
	_, ok := knownEncodings[scheme]
	return ok
}
