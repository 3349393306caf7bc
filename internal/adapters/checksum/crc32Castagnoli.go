package checksum

import (
	"hash/crc32"
)

type crc32Castagnoli struct {
	name  string
	table *crc32.Table
}

func NewCRC32Castagnoli() *crc32Castagnoli {
	return &crc32Castagnoli{
		name:  string(CRC32Castagnoli),
		table: crc32.MakeTable(crc32.Castagnoli),
	}
}

func (c *crc32Castagnoli) Calculate(data []byte) uint32 {
	return crc32.Checksum(data, c.table)
}

func (c *crc32Castagnoli) Verify(data []byte, expected uint32) bool {
	return crc32.Checksum(data, c.table) == expected
}

func (c *crc32Castagnoli) Name() string {
	return c.name
}
