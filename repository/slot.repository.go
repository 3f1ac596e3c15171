package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/go-arrower/schoolstore/alog"
)

// maxKeyAttempts bounds the retries of a KeyGenerator that keeps returning taken keys.
const maxKeyAttempts = 100

// SlotRepository keeps the ordered record set of one entity in a single slot of a Store.
// E has to be a struct with a string field used as key, see WithKeyField.
//
// It is safe for concurrent use within a process.
type SlotRepository[E any] struct {
	mu *sync.Mutex

	store Store
	slot  string
	seed  []E

	codec     Codec
	keys      KeyGenerator
	keyField  string
	// fields maps the lower case json name of each field of E to its json name.
	fields    map[string]string
	onCorrupt CorruptPolicy
	logger    alog.Logger
}

// NewSlotRepository returns a repository for the records in slot.
// seed is written to the slot, the first time it is read while empty.
//
// It panics if E does not have a string key field.
func NewSlotRepository[E any](store Store, slot string, seed []E, opts ...Option) *SlotRepository[E] {
	if store == nil {
		panic("repository: store is nil")
	}

	conf := defaultConfig()
	for _, opt := range opts {
		opt(conf)
	}

	entityType := reflect.TypeOf(*new(E))
	if entityType == nil || entityType.Kind() != reflect.Struct {
		panic(fmt.Sprintf("repository: entity of slot %s is not a struct", slot))
	}

	if field, ok := entityType.FieldByName(conf.keyField); !ok || field.Type.Kind() != reflect.String {
		panic(fmt.Sprintf("repository: entity %s has no string key field %s", entityType.Name(), conf.keyField))
	}

	return &SlotRepository[E]{
		mu:        &sync.Mutex{},
		store:     store,
		slot:      slot,
		seed:      slices.Clone(seed),
		codec:     conf.codec,
		keys:      conf.keys,
		keyField:  conf.keyField,
		fields:    jsonNames(entityType),
		onCorrupt: conf.onCorrupt,
		logger:    conf.logger,
	}
}

// Slot returns the name of the slot the records are kept in.
func (repo *SlotRepository[E]) Slot() string {
	return repo.slot
}

// List returns all records in stored order.
// If the slot is empty, it is seeded first.
func (repo *SlotRepository[E]) List(ctx context.Context) ([]E, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return repo.load(ctx)
}

// GetByKey returns the first record with the given key.
// If there is none, the bool is false. Not finding a record is not an error.
func (repo *SlotRepository[E]) GetByKey(ctx context.Context, key string) (E, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	records, err := repo.load(ctx)
	if err != nil {
		return *new(E), false, err
	}

	i := repo.indexOf(records, key)
	if i < 0 {
		return *new(E), false, nil
	}

	return records[i], true, nil
}

// Create appends a new record with a freshly generated key and the fields of patch.
// A key set in patch is ignored.
func (repo *SlotRepository[E]) Create(ctx context.Context, patch any) (E, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	records, err := repo.load(ctx)
	if err != nil {
		return *new(E), err
	}

	key, err := repo.nextKey(records)
	if err != nil {
		return *new(E), err
	}

	record, err := repo.merge(*new(E), patch)
	if err != nil {
		return *new(E), err
	}

	repo.setKey(&record, key)

	records = append(records, record)

	if err := repo.persist(ctx, records); err != nil {
		return *new(E), err
	}

	repo.logger.Log(ctx, alog.LevelInfo, "record created",
		slog.String("slot", repo.slot),
		slog.String("key", key),
	)

	return record, nil
}

// Update merges the fields present in patch over the record with key.
// Fields not present in patch are kept as they are, the key can not be changed.
// If there is no record with key, nothing is written and the bool is false.
func (repo *SlotRepository[E]) Update(ctx context.Context, key string, patch any) (E, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	records, err := repo.load(ctx)
	if err != nil {
		return *new(E), false, err
	}

	i := repo.indexOf(records, key)
	if i < 0 {
		return *new(E), false, nil
	}

	record, err := repo.merge(records[i], patch)
	if err != nil {
		return *new(E), false, err
	}

	repo.setKey(&record, key)
	records[i] = record

	if err := repo.persist(ctx, records); err != nil {
		return *new(E), false, err
	}

	return record, true, nil
}

// Delete removes the record with key and returns the remaining set.
// Deleting a missing key leaves the set unchanged, it is still written.
func (repo *SlotRepository[E]) Delete(ctx context.Context, key string) ([]E, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	records, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}

	records = slices.DeleteFunc(records, func(e E) bool {
		return repo.keyOf(e) == key
	})

	if err := repo.persist(ctx, records); err != nil {
		return nil, err
	}

	return records, nil
}

// Reset replaces all records with the seed set.
func (repo *SlotRepository[E]) Reset(ctx context.Context) ([]E, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return repo.reseed(ctx, "reset")
}

func (repo *SlotRepository[E]) load(ctx context.Context) ([]E, error) {
	blob, err := repo.store.Load(ctx, repo.slot)
	if errors.Is(err, ErrSlotNotFound) {
		return repo.reseed(ctx, "empty slot")
	}

	if err != nil {
		return nil, err //nolint:wrapcheck // stores wrap ErrLoad
	}

	if len(bytes.TrimSpace(blob)) == 0 {
		return repo.reseed(ctx, "empty slot")
	}

	records := []E{}

	if err := repo.codec.Decode(blob, &records); err != nil {
		return repo.recoverCorrupt(ctx, blob, err)
	}

	if records == nil {
		records = []E{}
	}

	repo.logger.Log(ctx, alog.LevelDebug, "slot loaded",
		slog.String("slot", repo.slot),
		slog.Int("records", len(records)),
	)

	return records, nil
}

func (repo *SlotRepository[E]) recoverCorrupt(ctx context.Context, blob []byte, decodeErr error) ([]E, error) {
	if repo.onCorrupt == Fail {
		return nil, fmt.Errorf("%w: slot %s: %w", ErrCorrupt, repo.slot, decodeErr)
	}

	repo.logger.Log(ctx, slog.LevelWarn, "slot is corrupt, reseeding",
		slog.String("slot", repo.slot),
		slog.String("quarantine", repo.slot+".corrupt"),
		slog.String("error", decodeErr.Error()),
	)

	if err := repo.store.Store(ctx, repo.slot+".corrupt", blob); err != nil {
		repo.logger.Log(ctx, slog.LevelWarn, "could not keep copy of corrupt slot",
			slog.String("slot", repo.slot),
			slog.String("error", err.Error()),
		)
	}

	return repo.reseed(ctx, "corrupt slot")
}

func (repo *SlotRepository[E]) reseed(ctx context.Context, reason string) ([]E, error) {
	records := slices.Clone(repo.seed)
	if records == nil {
		records = []E{}
	}

	if err := repo.persist(ctx, records); err != nil {
		return nil, err
	}

	repo.logger.Log(ctx, alog.LevelInfo, "slot seeded",
		slog.String("slot", repo.slot),
		slog.String("reason", reason),
		slog.Int("records", len(records)),
	)

	return slices.Clone(records), nil
}

func (repo *SlotRepository[E]) persist(ctx context.Context, records []E) error {
	blob, err := repo.codec.Encode(records)
	if err != nil {
		return err //nolint:wrapcheck // codecs wrap ErrStore
	}

	if err := repo.store.Store(ctx, repo.slot, blob); err != nil {
		repo.logger.Log(ctx, slog.LevelWarn, "could not write slot",
			slog.String("slot", repo.slot),
			slog.String("error", err.Error()),
		)

		return err //nolint:wrapcheck // stores wrap ErrStore
	}

	return nil
}

func (repo *SlotRepository[E]) nextKey(records []E) (string, error) {
	for i := 0; i < maxKeyAttempts; i++ {
		key := repo.keys.NextKey()
		if key != "" && repo.indexOf(records, key) < 0 {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w: slot %s", ErrKeyExhausted, repo.slot)
}

// merge overlays the top level fields of patch onto base.
// Both are compared by their json field names, so a typed patch struct
// with omitempty pointer fields only overwrites the fields that are set.
// Patch keys match field names case-insensitively, like encoding/json does,
// and are renamed to the field's json name before merging.
func (repo *SlotRepository[E]) merge(base E, patch any) (E, error) {
	if patch == nil {
		return base, nil
	}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return *new(E), fmt.Errorf("%w: %v", ErrInvalidPatch, err) //nolint:errorlint // prevent err in api
	}

	if !gjson.ParseBytes(patchJSON).IsObject() {
		return *new(E), fmt.Errorf("%w: patch is not an object", ErrInvalidPatch)
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return *new(E), fmt.Errorf("%w: %v", ErrInvalidPatch, err) //nolint:errorlint // prevent err in api
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(baseJSON, &fields); err != nil {
		return *new(E), fmt.Errorf("%w: %v", ErrInvalidPatch, err) //nolint:errorlint // prevent err in api
	}

	gjson.ParseBytes(patchJSON).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if canonical, ok := repo.fields[strings.ToLower(name)]; ok {
			name = canonical
		}

		fields[name] = json.RawMessage(value.Raw)

		return true
	})

	mergedJSON, err := json.Marshal(fields)
	if err != nil {
		return *new(E), fmt.Errorf("%w: %v", ErrInvalidPatch, err) //nolint:errorlint // prevent err in api
	}

	var merged E
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return *new(E), fmt.Errorf("%w: %v", ErrInvalidPatch, err) //nolint:errorlint // prevent err in api
	}

	return merged, nil
}

func (repo *SlotRepository[E]) indexOf(records []E, key string) int {
	return slices.IndexFunc(records, func(e E) bool {
		return repo.keyOf(e) == key
	})
}

func (repo *SlotRepository[E]) keyOf(e E) string {
	return reflect.ValueOf(e).FieldByName(repo.keyField).String()
}

func (repo *SlotRepository[E]) setKey(e *E, key string) {
	reflect.ValueOf(e).Elem().FieldByName(repo.keyField).SetString(key)
}

func jsonNames(entityType reflect.Type) map[string]string {
	names := map[string]string{}

	for i := 0; i < entityType.NumField(); i++ {
		field := entityType.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		if name == "" {
			name = field.Name
		}

		names[strings.ToLower(name)] = name
	}

	return names
}
