package keyspace

import (
	"errors"
	"fmt"
	"strconv"
)

// Encode returns the natural-width code of k: the shortest code whose tier
// contains k.
func Encode(k Key) ([]byte, error) {
	return AppendEncode(nil, k)
}

// AppendEncode appends the natural-width code of k to dst.
func AppendEncode(dst []byte, k Key) ([]byte, error) {
	w, ok := widthOf(k)
	if !ok {
		return dst, &CodecError{
			Op:       "encode",
			Offset:   -1,
			Key:      k,
			Expected: tierRange{0, uint64(MaxKey)},
			Found:    uint64(k),
			Cause:    ErrKeyOutOfRange,
		}
	}
	return appendDigits(dst, k, w), nil
}

// Decode returns the key of a natural-width code. The code's length selects
// the tier.
func Decode(code []byte) (Key, error) {
	return DigitsToKey(code)
}

// KeySpace fixes the slot width used for every key of one chapter. The width
// is derived once, from the chapter's final term count.
type KeySpace struct {
	Width int
}

// New returns a key-space with the given slot width.
func New(width int) (KeySpace, error) {
	if width < 1 || width > MaxWidth {
		return KeySpace{}, &CodecError{Op: "keyspace", Offset: -1, Found: width, Cause: ErrUnsupportedWidth}
	}
	return KeySpace{Width: width}, nil
}

// ForCount returns the narrowest key-space able to number count keys.
func ForCount(count uint64) (KeySpace, error) {
	w, err := BytesNeeded(count)
	if err != nil {
		return KeySpace{}, err
	}
	return KeySpace{Width: w}, nil
}

// Capacity returns the number of keys representable in the key-space; valid
// keys are [0, Capacity()-1].
func (ks KeySpace) Capacity() uint64 {
	return CumulativeCapacity(ks.Width)
}

// Encode returns the Width-byte slot for k.
func (ks KeySpace) Encode(k Key) ([]byte, error) {
	return ks.AppendEncode(make([]byte, 0, ks.Width), k)
}

// AppendEncode appends the Width-byte slot for k to dst. Keys whose natural
// code is shorter than the slot are left-padded with Pad bytes.
func (ks KeySpace) AppendEncode(dst []byte, k Key) ([]byte, error) {
	if ks.Width < 1 || ks.Width > MaxWidth {
		return dst, &CodecError{Op: "encode", Offset: -1, Key: k, Found: ks.Width, Cause: ErrUnsupportedWidth}
	}
	if uint64(k) >= ks.Capacity() {
		return dst, &CodecError{
			Op:       "encode",
			Offset:   -1,
			Key:      k,
			Expected: tierRange{0, ks.Capacity() - 1},
			Found:    uint64(k),
			Cause:    ErrKeyOutOfRange,
		}
	}
	w, _ := widthOf(k)
	return appendSlot(dst, k, w, ks.Width), nil
}

// Decode reads one Width-byte slot from the front of b. Extra trailing bytes
// are ignored.
func (ks KeySpace) Decode(b []byte) (Key, error) {
	if ks.Width < 1 || ks.Width > MaxWidth {
		return 0, &CodecError{Op: "decode", Offset: -1, Found: ks.Width, Cause: ErrUnsupportedWidth}
	}
	if len(b) < ks.Width {
		return 0, &CodecError{Op: "decode", Offset: len(b), Expected: ks.Width, Found: len(b), Cause: ErrShortKey}
	}
	slot := b[:ks.Width]
	start := 0
	for start < len(slot) && slot[start] == Pad {
		start++
	}
	if start == len(slot) {
		return 0, &CodecError{
			Op:       "decode",
			Offset:   start - 1,
			Expected: "digit byte >= 0x04",
			Found:    byteString(Pad),
			Cause:    ErrReservedByte,
		}
	}
	k, err := DigitsToKey(slot[start:])
	if err != nil {
		var ce *CodecError
		if errors.As(err, &ce) && ce.Offset >= 0 {
			ce.Offset += start
		}
		return 0, err
	}
	return k, nil
}

func appendSlot(dst []byte, k Key, natural, slot int) []byte {
	for i := natural; i < slot; i++ {
		dst = append(dst, Pad)
	}
	return appendDigits(dst, k, natural)
}

func byteString(b byte) string {
	return fmt.Sprintf("0x%02x", b)
}

func uitoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
