package identity

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// User ids are ULIDs: 26 chars, sortable by creation time. Ids minted within
// the same millisecond stay ordered through the monotonic entropy source.
var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

func newUserID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now()
	}

	idMu.Lock()
	defer idMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), idEntropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// validUserID reports whether id could have been minted by newUserID.
func validUserID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
