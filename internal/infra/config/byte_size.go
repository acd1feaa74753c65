package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ByteSize is a size in bytes read from a human-friendly value like "5MB", "512 KiB" or "1048576".
type ByteSize uint64

// ParseByteSize parses a human-friendly size.
func ParseByteSize(value string) (ByteSize, error) {
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("parse bytes: %w", err)
	}

	return ByteSize(size), nil
}

// Bytes returns the size as a signed byte count, as used by io and os.
func (s ByteSize) Bytes() int64 {
	return int64(s) //nolint:gosec
}

func (s ByteSize) String() string {
	return humanize.IBytes(uint64(s))
}
