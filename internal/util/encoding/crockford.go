package encoding

import (
	"encoding/base32"
	"strings"
)

// crockfordB32LCAlphabet is Crockford's Base32 alphabet in lowercase.
// It leaves out i, l, o and u, so encoded values are safe as file names and hard to misread.
const crockfordB32LCAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

//nolint:gochecknoglobals
var crockfordB32LC = base32.NewEncoding(crockfordB32LCAlphabet).WithPadding(base32.NoPadding)

// EncodeCrockfordB32LC encodes a byte slice using Crockford's Base32 alphabet, lowercase and unpadded.
func EncodeCrockfordB32LC(input []byte) string {
	return crockfordB32LC.EncodeToString(input)
}

// IsCrockfordB32LC reports whether s is a non-empty string of lowercase Crockford Base32 digits.
func IsCrockfordB32LC(s string) bool {
	if s == "" {
		return false
	}

	for _, char := range s {
		if !strings.ContainsRune(crockfordB32LCAlphabet, char) {
			return false
		}
	}

	return true
}
