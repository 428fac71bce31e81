// Package ids generates the short entity codes used as group and timer
// primary keys.
package ids

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// CodeLength is the fixed length of every generated code.
	CodeLength = 12
)

// NewCode returns a random fixed-length code drawn from the
// uppercase-alphanumeric alphabet. Collisions are not checked against
// existing rows; with 36^12 possibilities they are treated as unreachable.
func NewCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("ids: read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}
