package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
)

type (
	// DB is an in-memory store, used in tests & local development.
	DB struct {
		user     *userTable
		delivery *deliveryTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	deliveryTable struct {
		sync.RWMutex
		table map[string]*deliveryRow
		seq   int64
	}

	// deliveryRow keeps the insertion order to break ties between equal creation times.
	deliveryRow struct {
		delivery.Delivery
		seq int64
	}
)

var _ core.Pinger = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		delivery: &deliveryTable{table: make(map[string]*deliveryRow)},
	}
	return db, nil
}

// Ping always succeeds.
func (db *DB) Ping(context.Context) error { return nil }

func (db *DB) Close() error { return nil }

// Reset empties every table.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.delivery.Lock()
	db.delivery.table = make(map[string]*deliveryRow)
	db.delivery.seq = 0
	db.delivery.Unlock()
}
