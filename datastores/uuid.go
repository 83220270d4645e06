package datastores

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// UUID is a [uuid.UUID] that uses [base64.RawURLEncoding]
// to marshal to text.
type UUID uuid.UUID

// newUUID returns a version 7 UUID. Those are time ordered and
// monotonic within the process, see [uuid.NewV7].
func newUUID() UUID { return UUID(uuid.Must(uuid.NewV7())) }

func (*UUID) encoding() *base64.Encoding { return base64.RawURLEncoding }

func (id *UUID) AppendText(b []byte) ([]byte, error) {
	return id.encoding().AppendEncode(b, id[:]), nil
}

func (id *UUID) MarshalText() ([]byte, error) {
	return id.AppendText(nil)
}

func (id UUID) String() string {
	b, _ := id.MarshalText()
	return string(b)
}

// NewContactID is the default id generator of [ContactsInmem].
func NewContactID() ContactID { return ContactID(newUUID().String()) }
