// Package repository implements Postgres persistence, one repository per
// entity. Store bundles them behind the interfaces the services consume.
package repository

import (
	"github.com/mholloway/tally/internal/automatch"
	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/events"
	"github.com/mholloway/tally/internal/ingest"
	"github.com/mholloway/tally/internal/money"
)

// Store aggregates the per-entity repositories. Method promotion makes it
// satisfy each service's store interface directly.
type Store struct {
	*FamilyRepository
	*AccountRepository
	*TransactionRepository
	*EventRepository
	*CategoryRepository
	*SavingsRepository
}

func NewStore(db *database.DB) *Store {
	return &Store{
		FamilyRepository:      NewFamilyRepository(db),
		AccountRepository:     NewAccountRepository(db),
		TransactionRepository: NewTransactionRepository(db),
		EventRepository:       NewEventRepository(db),
		CategoryRepository:    NewCategoryRepository(db),
		SavingsRepository:     NewSavingsRepository(db),
	}
}

var (
	_ ingest.Store    = (*Store)(nil)
	_ automatch.Store = (*Store)(nil)
	_ money.Store     = (*Store)(nil)
	_ events.Store    = (*Store)(nil)
)
