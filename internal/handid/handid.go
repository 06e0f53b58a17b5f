// Package handid generates sortable hand identifiers.
//
// IDs are UUIDv7 values encoded as 26 lowercase Crockford base32
// characters, so they sort by creation time.
package handid

import (
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet, as used by TypeID.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generate returns a new hand ID.
func Generate() string {
	return encode(uuid.Must(uuid.NewV7()))
}

// Generator returns an ID source that draws its random bits from r, for
// reproducible IDs in tests. The timestamp bits still come from the clock.
func Generator(r io.Reader) func() string {
	return func() string {
		id, err := uuid.NewV7FromReader(r)
		if err != nil {
			panic("handid: " + err.Error())
		}
		return encode(id)
	}
}

func encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Parse decodes an ID back into its UUID.
func Parse(id string) (uuid.UUID, error) {
	if len(id) != 26 {
		return uuid.Nil, fmt.Errorf("hand ID must be exactly 26 characters, got %d", len(id))
	}
	raw, err := encoding.DecodeString(strings.ToLower(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid hand ID %q: %w", id, err)
	}
	return uuid.FromBytes(raw)
}

// Validate checks that id was produced by this package.
func Validate(id string) error {
	u, err := Parse(id)
	if err != nil {
		return err
	}
	if u.Version() != 7 {
		return fmt.Errorf("hand ID %q is not a version 7 UUID", id)
	}
	return nil
}
