package archive

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-bat/pkg/schema"
)

var (
	ErrSealed              = errors.New("chapter is sealed")
	ErrNotSealed           = errors.New("chapter is not sealed")
	ErrNotTermChapter      = errors.New("chapter does not hold terms")
	ErrUnknownChapter      = errors.New("unknown chapter")
	ErrDuplicateChapter    = errors.New("duplicate chapter")
	ErrUnsupportedEncoding = errors.New("unsupported encoding scheme")
	ErrUnsupportedVersion  = errors.New("unsupported archive version")
	ErrMissingHeader       = errors.New("archive header missing")
	ErrMissingDictionary   = errors.New("archive dictionary missing")
	ErrMalformedChapter    = errors.New("malformed chapter")
	ErrTermNotFound        = errors.New("term not found")
)

// ArchiveError ties a failure to the operation and chapter it happened in.
type ArchiveError struct {
	Op      string
	Chapter schema.ChapterCode // zero when not chapter specific
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	switch {
	case e.Chapter != 0 && e.Context != "":
		return fmt.Sprintf("archive: %s %s (%s): %v", e.Op, e.Chapter, e.Context, e.Cause)
	case e.Chapter != 0:
		return fmt.Sprintf("archive: %s %s: %v", e.Op, e.Chapter, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("archive: %s (%s): %v", e.Op, e.Context, e.Cause)
	default:
		return fmt.Sprintf("archive: %s: %v", e.Op, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

func chapterError(op string, code schema.ChapterCode, cause error) error {
	return &ArchiveError{Op: op, Chapter: code, Cause: cause}
}

func malformed(op string, code schema.ChapterCode, format string, args ...any) error {
	return &ArchiveError{Op: op, Chapter: code, Context: fmt.Sprintf(format, args...), Cause: ErrMalformedChapter}
}
