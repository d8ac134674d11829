package keyspace

import (
	"bytes"
	"errors"
	"testing"
)

func TestBytesNeeded(t *testing.T) {
	tests := []struct {
		count uint64
		want  int
	}{
		{0, 1},
		{1, 1},
		{252, 1},
		{253, 2},
		{63756, 2},
		{63757, 3},
		{16066764, 3},
		{16066765, 4},
		{4048824780, 4},
	}

	for _, tt := range tests {
		got, err := BytesNeeded(tt.count)
		if err != nil {
			t.Errorf("BytesNeeded(%d) error: %v", tt.count, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BytesNeeded(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}

	if _, err := BytesNeeded(4048824781); !errors.Is(err, ErrUnsupportedWidth) {
		t.Errorf("BytesNeeded beyond 4 bytes: err = %v, want ErrUnsupportedWidth", err)
	}
}

func TestCumulativeCapacity(t *testing.T) {
	tests := []struct {
		width int
		want  uint64
	}{
		{1, 252},
		{2, 63756},
		{3, 16066764},
		{4, 4048824780},
	}
	for _, tt := range tests {
		if got := CumulativeCapacity(tt.width); got != tt.want {
			t.Errorf("CumulativeCapacity(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
	if MaxKey != 4048824779 {
		t.Errorf("MaxKey = %d", MaxKey)
	}
}

func TestEncodeVectors(t *testing.T) {
	tests := []struct {
		key  Key
		want []byte
	}{
		{0, []byte{0x04}},
		{1, []byte{0x05}},
		{251, []byte{0xff}},
		{252, []byte{0x04, 0x04}},
		{253, []byte{0x04, 0x05}},
		{503, []byte{0x04, 0xff}},
		{504, []byte{0x05, 0x04}},
		{63755, []byte{0xff, 0xff}},
		{63756, []byte{0x04, 0x04, 0x04}},
		{16066763, []byte{0xff, 0xff, 0xff}},
		{16066764, []byte{0x04, 0x04, 0x04, 0x04}},
		{MaxKey, []byte{0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		got, err := Encode(tt.key)
		if err != nil {
			t.Errorf("Encode(%d) error: %v", tt.key, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Encode(%d) = % x, want % x", tt.key, got, tt.want)
		}
		back, err := Decode(got)
		if err != nil {
			t.Errorf("Decode(% x) error: %v", got, err)
			continue
		}
		if back != tt.key {
			t.Errorf("Decode(% x) = %d, want %d", got, back, tt.key)
		}
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Encode(MaxKey + 1)
	if !errors.Is(err, ErrKeyOutOfRange) {
		t.Fatalf("err = %v, want ErrKeyOutOfRange", err)
	}
	var ce *CodecError
	if !errors.As(err, &ce) || ce.Key != MaxKey+1 {
		t.Errorf("CodecError = %+v", ce)
	}
}

func TestKeyToDigitsRejectsWrongTier(t *testing.T) {
	if _, err := KeyToDigits(10, 2); !errors.Is(err, ErrKeyOutOfRange) {
		t.Errorf("KeyToDigits(10, 2) err = %v", err)
	}
	if _, err := KeyToDigits(300, 1); !errors.Is(err, ErrKeyOutOfRange) {
		t.Errorf("KeyToDigits(300, 1) err = %v", err)
	}
	if _, err := KeyToDigits(0, 5); !errors.Is(err, ErrUnsupportedWidth) {
		t.Errorf("KeyToDigits(0, 5) err = %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		want   error
		offset int
	}{
		{"empty", nil, ErrUnsupportedWidth, -1},
		{"five bytes", []byte{4, 4, 4, 4, 4}, ErrUnsupportedWidth, -1},
		{"terminator", []byte{0x00}, ErrReservedByte, 0},
		{"absolute iri marker", []byte{0x04, 0x01}, ErrReservedByte, 1},
		{"pad inside natural code", []byte{0x05, 0x06, 0x03}, ErrReservedByte, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var ce *CodecError
			if !errors.As(err, &ce) {
				t.Fatalf("not a CodecError: %T", err)
			}
			if ce.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", ce.Offset, tt.offset)
			}
		})
	}
}

func TestKeySpaceSlots(t *testing.T) {
	ks, err := New(3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key  Key
		want []byte
	}{
		{0, []byte{0x03, 0x03, 0x04}},
		{251, []byte{0x03, 0x03, 0xff}},
		{252, []byte{0x03, 0x04, 0x04}},
		{63756, []byte{0x04, 0x04, 0x04}},
		{16066763, []byte{0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		slot, err := ks.Encode(tt.key)
		if err != nil {
			t.Errorf("Encode(%d) error: %v", tt.key, err)
			continue
		}
		if !bytes.Equal(slot, tt.want) {
			t.Errorf("Encode(%d) = % x, want % x", tt.key, slot, tt.want)
		}
		k, err := ks.Decode(slot)
		if err != nil || k != tt.key {
			t.Errorf("Decode(% x) = %d, %v; want %d", slot, k, err, tt.key)
		}
	}

	if _, err := ks.Encode(16066764); !errors.Is(err, ErrKeyOutOfRange) {
		t.Errorf("Encode past capacity err = %v", err)
	}
}

func TestKeySpaceDecodeErrors(t *testing.T) {
	ks := KeySpace{Width: 2}

	_, err := ks.Decode([]byte{0x05})
	if !errors.Is(err, ErrShortKey) {
		t.Errorf("short slot err = %v", err)
	}

	_, err = ks.Decode([]byte{0x03, 0x03})
	if !errors.Is(err, ErrReservedByte) {
		t.Errorf("all-pad slot err = %v", err)
	}

	_, err = ks.Decode([]byte{0x03, 0x02})
	var ce *CodecError
	if !errors.As(err, &ce) || !errors.Is(err, ErrReservedByte) {
		t.Fatalf("reserved digit err = %v", err)
	}
	if ce.Offset != 1 {
		t.Errorf("offset = %d, want 1", ce.Offset)
	}

	k, err := ks.Decode([]byte{0x03, 0x09, 0xaa})
	if err != nil || k != 5 {
		t.Errorf("Decode with trailing bytes = %d, %v", k, err)
	}
}

func TestForCount(t *testing.T) {
	ks, err := ForCount(253)
	if err != nil {
		t.Fatal(err)
	}
	if ks.Width != 2 || ks.Capacity() != 63756 {
		t.Errorf("ForCount(253) = %+v, capacity %d", ks, ks.Capacity())
	}
	if _, err := New(0); !errors.Is(err, ErrUnsupportedWidth) {
		t.Errorf("New(0) err = %v", err)
	}
}

// carryForm is the closed-form arithmetic that adds the skipped reserved
// values back into the key instead of extracting digits.
func carryForm(i uint64) []byte {
	switch {
	case i < 0xfc:
		return []byte{byte(i + 4)}
	case i < 0xf90c:
		x := i + 0x304 + (i/0xfc)<<2
		return []byte{byte(x >> 8), byte(x)}
	case i < 0xf528cc:
		x := i + 0x30704 + ((i-0xf90c)/0xf810)<<10 + (i/0xfc)<<2
		return []byte{byte(x >> 16), byte(x >> 8), byte(x)}
	default:
		x := i + 0x3070704 + ((i-0xf528cc)/0xf42fc0)<<18 + ((i-0xf90c)/0xf810)<<10 + (i/0xfc)<<2
		return []byte{byte(x >> 24), byte(x >> 16), byte(x >> 8), byte(x)}
	}
}

func TestEncodeMatchesCarryForm(t *testing.T) {
	check := func(k Key) {
		got, err := Encode(k)
		if err != nil {
			t.Fatalf("Encode(%d): %v", k, err)
		}
		if want := carryForm(uint64(k)); !bytes.Equal(got, want) {
			t.Fatalf("Encode(%d) = % x, carry form % x", k, got, want)
		}
	}

	for k := Key(0); k < 70000; k++ {
		check(k)
	}
	for k := Key(16066764 - 5000); k < 16066764+5000; k++ {
		check(k)
	}
	for k := Key(16066764); k < MaxKey; k += 1000003 {
		check(k)
	}
	check(MaxKey)
}
