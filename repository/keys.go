package repository

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// KeyGenerator returns a new key for every call.
// The repository still checks each key against its set and asks again on a collision.
type KeyGenerator interface {
	NextKey() string
}

// KeyGeneratorByName returns the generator for the key format name:
// "timestamp", "ulid", or "uuid". An empty name returns the timestamp generator.
func KeyGeneratorByName(name string) (KeyGenerator, error) { //nolint:ireturn // selection by config
	switch name {
	case "", "timestamp":
		return NewTimestampKeys(), nil
	case "ulid":
		return ULIDKeys{}, nil
	case "uuid":
		return UUIDKeys{}, nil
	}

	return nil, fmt.Errorf("%w: key format: %s", ErrUnknownFormat, name)
}

var _ KeyGenerator = (*TimestampKeys)(nil)

// TimestampKeys generates keys from the current time in unix milliseconds.
// Keys are strictly increasing within one generator: if two calls fall into the same
// millisecond, the later one is bumped. Generators in other processes can still
// produce the same key, the repository then moves on to the next one.
type TimestampKeys struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTimestampKeys() *TimestampKeys {
	return &TimestampKeys{now: time.Now}
}

func (g *TimestampKeys) NextKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.now().UnixMilli()
	if next <= g.last {
		next = g.last + 1
	}

	g.last = next

	return strconv.FormatInt(next, 10)
}

// ULIDKeys generates lexicographically sortable keys.
type ULIDKeys struct{}

func (ULIDKeys) NextKey() string {
	return ulid.Make().String()
}

// UUIDKeys generates random v4 UUIDs.
type UUIDKeys struct{}

func (UUIDKeys) NextKey() string {
	return uuid.NewString()
}
