package ids

import (
	"fmt"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier suitable for storage keys.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Membership returns a party membership number in the UPND<timestamp> format
// printed on registration slips and cards.
func Membership(now time.Time) string {
	return fmt.Sprintf("UPND%d", now.UnixMilli())
}

// CardNumber returns a membership card number. The ULID suffix keeps card
// numbers unique even when several cards are issued within the same
// millisecond.
func CardNumber() string {
	id := New()
	return "UPND-CARD-" + strings.ToUpper(id[len(id)-10:])
}
