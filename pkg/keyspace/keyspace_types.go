package keyspace

import "github.com/dd0wney/cluso-bat/pkg/schema"

// Key codes are written in a bijective positional numeral system whose digit
// alphabet is every byte value except the reserved control bytes:
//
//	width 1: keys 0 .. 251                    (252 codes)
//	width 2: keys 252 .. 63,755               (252^2 codes)
//	width 3: keys 63,756 .. 16,066,763        (252^3 codes)
//	width 4: keys 16,066,764 .. 4,048,824,779 (252^4 codes)
//
// Within a width, the key's offset from the first key of that width is
// written in base 252, most significant digit first, each digit stored as
// digit+4. A code never contains a byte below 0x04.

const (
	// Radix is the number of digit symbols.
	Radix = 256 - schema.ReservedCount
	// DigitOffset is added to a digit value to get its stored byte.
	DigitOffset = schema.ReservedCount
	// MaxWidth is the widest supported code.
	MaxWidth = 4
	// Pad fills the unused leading bytes of a short code inside a fixed slot.
	Pad = schema.TokenPrefixFollows
)

// Key is a dense term identifier within one chapter.
type Key uint64

// tierBase[w] is the first key of width w; tierBase[w+1] is one past its last.
var tierBase = [MaxWidth + 2]uint64{
	0,
	0,
	Radix,
	Radix + Radix*Radix,
	Radix + Radix*Radix + Radix*Radix*Radix,
	Radix + Radix*Radix + Radix*Radix*Radix + Radix*Radix*Radix*Radix,
}

// MaxKey is the largest key any code can represent.
const MaxKey Key = Radix + Radix*Radix + Radix*Radix*Radix + Radix*Radix*Radix*Radix - 1

// TierStart returns the first key encoded with width bytes.
func TierStart(width int) (Key, error) {
	if width < 1 || width > MaxWidth {
		return 0, &CodecError{Op: "tier", Offset: -1, Found: width, Cause: ErrUnsupportedWidth}
	}
	return Key(tierBase[width]), nil
}

// CumulativeCapacity returns how many keys are representable with codes of at
// most width bytes.
func CumulativeCapacity(width int) uint64 {
	if width < 1 {
		return 0
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	return tierBase[width+1]
}

// widthOf returns the natural code width of k.
func widthOf(k Key) (int, bool) {
	for w := 1; w <= MaxWidth; w++ {
		if uint64(k) < tierBase[w+1] {
			return w, true
		}
	}
	return 0, false
}

// Width returns the natural code width of k.
func Width(k Key) (int, error) {
	w, ok := widthOf(k)
	if !ok {
		return 0, &CodecError{Op: "width", Offset: -1, Key: k, Cause: ErrKeyOutOfRange}
	}
	return w, nil
}

// BytesNeeded returns the smallest width able to number count keys, i.e. the
// smallest width whose last key is at least count-1. A chapter with no keys
// still uses one byte.
func BytesNeeded(count uint64) (int, error) {
	if count == 0 {
		return 1, nil
	}
	w, ok := widthOf(Key(count - 1))
	if !ok {
		return 0, &CodecError{Op: "bytes needed", Offset: -1, Key: Key(count - 1), Cause: ErrUnsupportedWidth}
	}
	return w, nil
}
