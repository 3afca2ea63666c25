package uuid

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

type UUID = uuid.UUID

var Nil = uuid.Nil

func NewV4() UUID {
	return uuid.Must(uuid.NewV4())
}

func FromString(s string) (UUID, error) {
	return uuid.FromString(s)
}

// ShortHex returns the first n upper-case hex characters of a fresh v4 uuid.
func ShortHex(n int) string {
	s := strings.ReplaceAll(NewV4().String(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return strings.ToUpper(s[:n])
}
