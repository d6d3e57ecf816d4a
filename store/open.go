package store

import (
	"context"
	"fmt"

	"github.com/joy095/parlour/config"
	"github.com/joy095/parlour/config/db"
	"github.com/joy095/parlour/logger"
)

// Open returns the engine selected by driver. For postgres the schema is
// migrated first when migrate is set.
func Open(ctx context.Context, driver, dsn string, migrate bool) (Store, error) {
	switch driver {
	case config.DriverMemory:
		logger.WarnLogger.Warn("Using the in-memory store, bookings will not survive a restart")
		return NewMemoryStore(), nil

	case config.DriverPostgres:
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		s := NewPostgresStore(pool)
		if migrate {
			if err := s.Migrate(ctx); err != nil {
				db.Close(pool)
				return nil, err
			}
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
