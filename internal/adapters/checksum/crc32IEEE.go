package checksum

import (
	"errors"
	"hash/crc32"
)

var errUnsupportedAlgorithm = errors.New("unsupported checksum algorithm")

type crc32IEEE struct {
	name  string
	table *crc32.Table
}

func NewCRC32IEEE() *crc32IEEE {
	return &crc32IEEE{
		name:  string(CRC32IEEE),
		table: crc32.MakeTable(crc32.IEEE),
	}
}

func (c *crc32IEEE) Calculate(data []byte) uint32 {
	return crc32.Checksum(data, c.table)
}

func (c *crc32IEEE) Verify(data []byte, expected uint32) bool {
	return crc32.Checksum(data, c.table) == expected
}

func (c *crc32IEEE) Name() string {
	return c.name
}
