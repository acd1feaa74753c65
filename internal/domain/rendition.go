package domain

import (
	"strconv"
	"time"
)

// RenditionID identifies a resized icon in the rendition cache.
// It is derived from the source file's name, modification time, size and the target width,
// so editing an icon invalidates its cached renditions.
type RenditionID string

// RenditionKey is the input a RenditionID is derived from.
type RenditionKey struct {
	Name    string
	ModTime time.Time
	Size    int64
	Width   int
}

// Canonical returns the key as an unambiguous byte string, suitable for hashing.
func (k RenditionKey) Canonical() []byte {
	buf := make([]byte, 0, len(k.Name)+64)
	buf = strconv.AppendQuote(buf, k.Name)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, k.ModTime.UnixNano(), 10)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, k.Size, 10)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, int64(k.Width), 10)

	return buf
}

// String returns the string representation of the RenditionID.
func (id RenditionID) String() string {
	return string(id)
}
