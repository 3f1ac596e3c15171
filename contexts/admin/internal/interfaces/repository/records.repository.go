// Package repository persists the records of the admin sections.
package repository

import (
	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/domain"
	"github.com/go-arrower/schoolstore/repository"
)

// NewRecordsRepository keeps the records of section in the slot named after it.
func NewRecordsRepository[E any](
	store repository.Store,
	section domain.Section[E],
	opts ...repository.Option,
) application.Repository[E] {
	return repository.NewSlotRepository(store, section.Name, section.Seed(), opts...)
}
