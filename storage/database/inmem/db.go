package inmemdb

import (
	"sync"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
)

type (
	DB struct {
		group     *groupTable
		recipient *recipientTable
		item      *itemTable
		record    *recordTable
	}

	groupTable struct {
		sync.RWMutex
		table map[string]progress.Group
	}

	recipientTable struct {
		sync.RWMutex
		table map[string]progress.Recipient
		order []string // insertion order
	}

	itemTable struct {
		sync.RWMutex
		table map[string]progress.Item
		order []string // insertion order
	}

	recordTable struct {
		sync.RWMutex
		rows []progress.CompletionRecord
	}
)

func Open() (*DB, error) {
	db := &DB{
		group:     &groupTable{table: make(map[string]progress.Group)},
		recipient: &recipientTable{table: make(map[string]progress.Recipient)},
		item:      &itemTable{table: make(map[string]progress.Item)},
		record:    &recordTable{},
	}
	return db, nil
}

func NewRepositories(db *DB) database.Repositories {
	return database.Repositories{
		Groups:     NewGroupRepository(db),
		Recipients: NewRecipientRepository(db),
		Items:      NewItemRepository(db),
		Records:    NewRecordRepository(db),
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
