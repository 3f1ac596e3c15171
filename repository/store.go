package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Store is a key-value store of slots.
// Each slot holds one encoded record set as an opaque blob.
//
// Load returns an error wrapping ErrSlotNotFound, if nothing was stored for the slot yet.
type Store interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Store(ctx context.Context, slot string, blob []byte) error
}

// SlotInfo describes a stored slot.
type SlotInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lister is implemented by stores that can enumerate their slots.
type Lister interface {
	Slots(ctx context.Context) ([]SlotInfo, error)
}

// Pinger is implemented by stores that depend on a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)

// MemoryStore keeps all slots in memory, for the lifetime of the process.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]memorySlot
}

type memorySlot struct {
	blob      []byte
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string]memorySlot{}}
}

func (s *MemoryStore) Load(_ context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}

	return slices.Clone(data.blob), nil
}

func (s *MemoryStore) Store(_ context.Context, slot string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[slot] = memorySlot{blob: slices.Clone(blob), updatedAt: time.Now().UTC()}

	return nil
}

func (s *MemoryStore) Slots(_ context.Context) ([]SlotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SlotInfo, 0, len(s.slots))
	for name, data := range s.slots {
		infos = append(infos, SlotInfo{Name: name, Size: int64(len(data.blob)), UpdatedAt: data.updatedAt})
	}

	sortSlots(infos)

	return infos, nil
}

func sortSlots(infos []SlotInfo) {
	slices.SortFunc(infos, func(a, b SlotInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
}
