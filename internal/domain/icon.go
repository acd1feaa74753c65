package domain

import (
	"bytes"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidIconName      = errors.New("invalid icon name")
	ErrIconTypeNotSupported = errors.New("icon type not supported")
	ErrIconTypeMismatch     = errors.New("icon ext does not match content type")
	ErrIconTooLarge         = errors.New("icon too large")
	ErrInvalidIconWidth     = errors.New("invalid icon width")
)

// Icon is an image file from the icons directory, or a resized rendition of one.
type Icon struct {
	Name     string    // File name relative to the icons directory
	MIMEType string    // Sniffed content type
	ModTime  time.Time // Modification time of the source file
	Body     []byte
}

// Size returns the size of the icon's content in bytes.
func (i Icon) Size() int64 {
	return int64(len(i.Body))
}

// Read returns a reader for accessing the icon's content.
func (i Icon) Read() io.ReadSeeker {
	return bytes.NewReader(i.Body)
}

// WithBody returns a copy of the icon with other content, such as a resized rendition.
func (i Icon) WithBody(body []byte) Icon {
	i.Body = body

	return i
}
