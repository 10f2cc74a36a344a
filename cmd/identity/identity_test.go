package identity

import (
	"context"
	"testing"
	"time"

	"station/cmd/security/password"
)

func fastPasswordConfig() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	cfg.BcryptCost = 4
	return cfg
}

func testCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

// Not parallel: other tests minting ids at a different millisecond reset
// the monotonic entropy.
func TestNewUserID_SortableAndValid(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prev := ""
	for i := 0; i < 50; i++ {
		id, err := newUserID(now)
		if err != nil {
			t.Fatalf("newUserID: %v", err)
		}
		if len(id) != 26 || !validUserID(id) {
			t.Fatalf("bad id %q", id)
		}
		if id <= prev {
			t.Fatalf("ids not increasing within one millisecond: %q <= %q", id, prev)
		}
		prev = id
	}

	for _, bad := range []string{"", "short", "01J0000000000000000000NONE", "01J00000000000000000000000X"} {
		if validUserID(bad) {
			t.Fatalf("validUserID(%q)=true", bad)
		}
	}
}
