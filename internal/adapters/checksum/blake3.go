package checksum

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// blake3Sum truncates a BLAKE3 hash to the 32-bit width of a frame table
// checksum slot. Truncation keeps the table entry size fixed across
// algorithms.
type blake3Sum struct {
	name string
}

func NewBlake3() *blake3Sum {
	return &blake3Sum{name: string(Blake3)}
}

func (b *blake3Sum) Calculate(data []byte) uint32 {
	sum := blake3.Sum256(data)
	return binary.LittleEndian.Uint32(sum[:4])
}

func (b *blake3Sum) Verify(data []byte, expected uint32) bool {
	return b.Calculate(data) == expected
}

func (b *blake3Sum) Name() string {
	return b.name
}
