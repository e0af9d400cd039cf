package database

import (
	"context"
	"fmt"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
	dummydb "github.com/trezcool/entregas/storage/database/dummy"
	mongodb "github.com/trezcool/entregas/storage/database/mongo"
	"github.com/trezcool/entregas/storage/database/postgres"
)

// Store bundles the repositories of the configured database engine.
type Store struct {
	Users      user.Repository
	Deliveries delivery.Repository
	Pinger     core.Pinger
	Close      func() error

	// Migrate is only set for engines with a schema (postgres).
	Migrate func(ctx context.Context, command string, args ...string) error
}

// Open connects to the database engine selected by conf.Database.Engine.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Database.Engine {
	case core.EngineMongo:
		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:      mongodb.NewUserRepository(db),
			Deliveries: mongodb.NewDeliveryRepository(db),
			Pinger:     db,
			Close:      db.Close,
		}, nil

	case core.EnginePostgres:
		db, err := postgres.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:      postgres.NewUserRepository(db),
			Deliveries: postgres.NewDeliveryRepository(db),
			Pinger:     db,
			Close:      db.Close,
			Migrate:    db.Migrate,
		}, nil

	case core.EngineMemory:
		db, _ := dummydb.Open()
		return &Store{
			Users:      dummydb.NewUserRepository(db),
			Deliveries: dummydb.NewDeliveryRepository(db),
			Pinger:     db,
			Close:      db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database engine %q", conf.Database.Engine)
}
