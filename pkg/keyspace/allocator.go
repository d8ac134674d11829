package keyspace

// allocState tracks which code width the allocator is currently emitting.
type allocState uint8

const (
	stateOneByte allocState = iota
	stateTwoBytes
	stateThreeBytes
	stateFourBytes
	stateExhausted
)

func (s allocState) width() int {
	if s >= stateExhausted {
		return 0
	}
	return int(s) + 1
}

// transition returns the state that emits key. States only move forward.
func transition(s allocState, key Key) allocState {
	for s < stateExhausted && uint64(key) >= tierBase[s.width()+1] {
		s++
	}
	return s
}

// Allocator hands out keys 0, 1, 2, ... and writes their codes into a growing
// buffer. The Nth call emits exactly Encode(N).
//
// An Allocator belongs to the single chapter being built and is not safe for
// concurrent use.
type Allocator struct {
	nextKey Key
	state   allocState
	slot    int // 0 for natural-width codes
}

// NewAllocator returns an allocator that emits natural-width codes, widening
// as keys cross each tier boundary.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NewSlotAllocator returns an allocator that emits fixed ks.Width slots and
// stops at the key-space capacity.
func NewSlotAllocator(ks KeySpace) (*Allocator, error) {
	if ks.Width < 1 || ks.Width > MaxWidth {
		return nil, &CodecError{Op: "allocate", Offset: -1, Found: ks.Width, Cause: ErrUnsupportedWidth}
	}
	return &Allocator{slot: ks.Width}, nil
}

// Next appends the code of the next key to dst and returns the extended
// buffer and the key.
func (a *Allocator) Next(dst []byte) ([]byte, Key, error) {
	w := a.state.width()
	k, err := a.Take()
	if err != nil {
		return dst, 0, err
	}
	if a.slot > 0 {
		return appendSlot(dst, k, w, a.slot), k, nil
	}
	return appendDigits(dst, k, w), k, nil
}

// Take hands out the next key without emitting its code. Keys taken and keys
// emitted by Next share one sequence.
func (a *Allocator) Take() (Key, error) {
	if a.state == stateExhausted {
		return 0, &CodecError{Op: "allocate", Offset: -1, Key: a.nextKey, Cause: ErrAllocatorExhausted}
	}
	k := a.nextKey
	if a.slot > 0 && a.state.width() > a.slot {
		return 0, &CodecError{
			Op:       "allocate",
			Offset:   -1,
			Key:      k,
			Expected: tierRange{0, CumulativeCapacity(a.slot) - 1},
			Found:    uint64(k),
			Cause:    ErrKeyOutOfRange,
		}
	}
	a.nextKey++
	a.state = transition(a.state, a.nextKey)
	return k, nil
}

// Width returns the natural width of the next code, or 0 once exhausted.
func (a *Allocator) Width() int {
	return a.state.width()
}

// Allocated returns how many keys have been handed out.
func (a *Allocator) Allocated() uint64 {
	return uint64(a.nextKey)
}

// Exhausted reports whether every representable key has been handed out.
func (a *Allocator) Exhausted() bool {
	return a.state == stateExhausted
}
