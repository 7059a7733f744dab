// Package bloom holds the tiny 16-bit per-bucket Bloom summaries and the
// membership test run against them.
//
// A summary answers "definitely not here" or "maybe here". Summaries are built
// elsewhere; this package only reads them.
package bloom

// Serial identifies a bucket within one descriptor sequence.
type Serial uint64

// Bits is a 16-bit Bloom summary of a bucket's contents.
type Bits uint16

// Descriptor pairs a bucket serial with its Bloom summary.
type Descriptor struct {
	serial Serial
	bits   Bits
}

// NewDescriptor creates a bucket descriptor.
func NewDescriptor(serial Serial, bits Bits) Descriptor {
	return Descriptor{serial: serial, bits: bits}
}

// Serial returns the bucket serial.
func (d Descriptor) Serial() Serial { return d.serial }

// Bits returns the Bloom summary.
func (d Descriptor) Bits() Bits { return d.bits }

// Nibbles splits a 16-bit probe into its four 4-bit bit indexes, most
// significant first.
func Nibbles(probe uint16) [4]uint8 {
	return [4]uint8{
		uint8(probe>>12) & 0x0f,
		uint8(probe>>8) & 0x0f,
		uint8(probe>>4) & 0x0f,
		uint8(probe) & 0x0f,
	}
}

// Test checks a probe against a summary. Each nibble of the probe selects one
// bit of the summary; a single missing bit disproves membership.
// Test only ever returns NotFound or MayExist.
func Test(probe uint16, summary Bits) Result {
	for _, n := range Nibbles(probe) {
		if summary&(1<<n) == 0 {
			return NotFound
		}
	}
	return MayExist
}
