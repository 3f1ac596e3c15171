package repository

import (
	"errors"
	"fmt"

	"github.com/go-arrower/schoolstore/alog"
)

var (
	ErrSlotNotFound  = errors.New("slot not found")
	ErrStore         = errors.New("could not store slot")
	ErrLoad          = errors.New("could not load slot")
	ErrCorrupt       = errors.New("slot data is corrupt")
	ErrInvalidPatch  = errors.New("invalid patch")
	ErrKeyExhausted  = errors.New("could not generate unique key")
	ErrUnknownFormat = errors.New("unknown format")
)

// CorruptPolicy decides what a repository does with a slot it can not decode.
type CorruptPolicy string

const (
	// Reseed keeps a copy of the bad blob in the slot "<slot>.corrupt",
	// logs a warning, and continues with the seed set.
	Reseed CorruptPolicy = "reseed"

	// Fail returns ErrCorrupt and leaves the slot untouched.
	Fail CorruptPolicy = "fail"
)

// ParseCorruptPolicy returns the policy with the given name.
// An empty name returns Reseed.
func ParseCorruptPolicy(name string) (CorruptPolicy, error) {
	switch CorruptPolicy(name) {
	case "", Reseed:
		return Reseed, nil
	case Fail:
		return Fail, nil
	}

	return "", fmt.Errorf("%w: corrupt policy: %s", ErrUnknownFormat, name)
}

// Option configures optional properties of a SlotRepository.
type Option func(*repoConfig)

type repoConfig struct {
	codec     Codec
	keys      KeyGenerator
	keyField  string
	onCorrupt CorruptPolicy
	logger    alog.Logger
}

func defaultConfig() *repoConfig {
	return &repoConfig{
		codec:     JSONCodec{},
		keys:      NewTimestampKeys(),
		keyField:  "Key",
		onCorrupt: Reseed,
		logger:    alog.NewNoop(),
	}
}

// WithCodec sets the document format of the slot. Defaults to JSONCodec.
func WithCodec(codec Codec) Option {
	return func(c *repoConfig) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithKeyGenerator sets the source of new keys. Defaults to NewTimestampKeys.
func WithKeyGenerator(keys KeyGenerator) Option {
	return func(c *repoConfig) {
		if keys != nil {
			c.keys = keys
		}
	}
}

// WithKeyField sets the name of the struct field used as key.
// If not set, it is assumed that the entity struct has a string field with the name "Key".
func WithKeyField(name string) Option {
	return func(c *repoConfig) {
		c.keyField = name
	}
}

// WithCorruptPolicy sets what happens on undecodable slot data. Defaults to Reseed.
func WithCorruptPolicy(policy CorruptPolicy) Option {
	return func(c *repoConfig) {
		c.onCorrupt = policy
	}
}

func WithLogger(logger alog.Logger) Option {
	return func(c *repoConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
