// Package testdata contains entities for testing the repository package.
package testdata

import (
	"github.com/brianvoe/gofakeit/v6"
)

type Entity struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Count int    `json:"count"`
	Note  string `json:"note,omitempty"`
}

// EntityPatch only encodes the fields that are set.
type EntityPatch struct {
	Key   *string `json:"key,omitempty"`
	Name  *string `json:"name,omitempty"`
	Code  *string `json:"code,omitempty"`
	Count *int    `json:"count,omitempty"`
	Note  *string `json:"note,omitempty"`
}

type EntityWithoutKey struct {
	Name string
}

type EntityWithIntKey struct {
	Key  int
	Name string
}

func Seed() []Entity {
	return []Entity{
		{Key: "1", Name: "Alpha", Code: "E001", Count: 1},
		{Key: "2", Name: "Beta", Code: "E002", Count: 2, Note: "second"},
		{Key: "3", Name: "Gamma", Code: "E003", Count: 3},
	}
}

// NewPatch returns a patch with random name and code.
func NewPatch() EntityPatch {
	return EntityPatch{
		Name: Ptr(gofakeit.Name()),
		Code: Ptr(gofakeit.Regex("E[0-9]{3}")),
	}
}

func Ptr[T any](v T) *T {
	return &v
}
