package keyspace

// KeyToDigits returns the width-byte code of k. k must lie in the tier that
// width covers. Every encode path in this package goes through appendDigits,
// so the allocator and the codec cannot disagree about a key's bytes.
func KeyToDigits(k Key, width int) ([]byte, error) {
	if width < 1 || width > MaxWidth {
		return nil, &CodecError{Op: "encode", Offset: -1, Key: k, Found: width, Cause: ErrUnsupportedWidth}
	}
	if uint64(k) < tierBase[width] || uint64(k) >= tierBase[width+1] {
		return nil, &CodecError{
			Op:       "encode",
			Offset:   -1,
			Key:      k,
			Expected: keyRange(width),
			Found:    uint64(k),
			Cause:    ErrKeyOutOfRange,
		}
	}
	return appendDigits(make([]byte, 0, width), k, width), nil
}

// DigitsToKey is the inverse of KeyToDigits. The code width is its length.
func DigitsToKey(code []byte) (Key, error) {
	width := len(code)
	if width < 1 || width > MaxWidth {
		return 0, &CodecError{Op: "decode", Offset: -1, Found: width, Cause: ErrUnsupportedWidth}
	}
	var offset uint64
	for i, b := range code {
		if b < DigitOffset {
			return 0, &CodecError{
				Op:       "decode",
				Offset:   i,
				Expected: "digit byte >= 0x04",
				Found:    byteString(b),
				Cause:    ErrReservedByte,
			}
		}
		offset = offset*Radix + uint64(b-DigitOffset)
	}
	return Key(tierBase[width] + offset), nil
}

// appendDigits writes the base-252 digits of k's offset within its tier,
// most significant first. Callers guarantee k is in width's tier.
func appendDigits(dst []byte, k Key, width int) []byte {
	offset := uint64(k) - tierBase[width]
	n := len(dst)
	for i := 0; i < width; i++ {
		dst = append(dst, 0)
	}
	for i := n + width - 1; i >= n; i-- {
		dst[i] = byte(offset%Radix) + DigitOffset
		offset /= Radix
	}
	return dst
}

type tierRange struct {
	first, last uint64
}

func (r tierRange) String() string {
	return "[" + uitoa(r.first) + ", " + uitoa(r.last) + "]"
}

func keyRange(width int) tierRange {
	return tierRange{first: tierBase[width], last: tierBase[width+1] - 1}
}
