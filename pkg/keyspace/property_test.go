package keyspace

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-bat/pkg/schema"
)

// TestCodecProperties checks round trips and digit bytes over every width tier.
func TestCodecProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	for w := 1; w <= MaxWidth; w++ {
		width := w
		first, last := tierBase[width], tierBase[width+1]-1

		properties.Property(fmt.Sprintf("decode(encode(k)) == k for %d-byte keys", width), prop.ForAll(
			func(k uint64) bool {
				code, err := Encode(Key(k))
				if err != nil || len(code) != width {
					return false
				}
				back, err := Decode(code)
				return err == nil && back == Key(k)
			},
			gen.UInt64Range(first, last),
		))

		properties.Property(fmt.Sprintf("no reserved bytes in %d-byte codes", width), prop.ForAll(
			func(k uint64) bool {
				code, err := Encode(Key(k))
				if err != nil {
					return false
				}
				for _, b := range code {
					if schema.IsReserved(b) {
						return false
					}
				}
				return true
			},
			gen.UInt64Range(first, last),
		))
	}

	properties.Property("padded slots round trip in a 4-byte key-space", prop.ForAll(
		func(k uint64) bool {
			ks := KeySpace{Width: MaxWidth}
			slot, err := ks.Encode(Key(k))
			if err != nil || len(slot) != MaxWidth {
				return false
			}
			back, err := ks.Decode(slot)
			return err == nil && back == Key(k)
		},
		gen.UInt64Range(0, uint64(MaxKey)),
	))

	properties.Property("slot width follows BytesNeeded", prop.ForAll(
		func(count uint64) bool {
			ks, err := ForCount(count)
			if err != nil {
				return false
			}
			if ks.Capacity() < count {
				return false
			}
			// the next narrower key-space must be too small
			return ks.Width == 1 || CumulativeCapacity(ks.Width-1) < count
		},
		gen.UInt64Range(0, uint64(MaxKey)+1),
	))

	properties.TestingRun(t)
}
