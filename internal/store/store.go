// Package store opens the score store selected by configuration.
package store

import (
	"fmt"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/config"
	"github.com/rescuerunner/runnerboard/internal/store/kv"
	"github.com/rescuerunner/runnerboard/internal/store/memory"
	"github.com/rescuerunner/runnerboard/internal/store/sqlite"
)

// Open returns the store named by cfg.Store along with a cleanup that
// releases it.
func Open(cfg config.Config) (runnerboard.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return memory.NewStore(), func() {}, nil

	case config.StoreSQLite:
		s, cleanup, err := sqlite.New(sqlite.Path(cfg.Database))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.Database, err)
		}
		return s, cleanup, nil

	case config.StoreLevelDB:
		db, cleanup, err := kv.OpenLevelDB(cfg.LevelDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open leveldb %s: %w", cfg.LevelDB, err)
		}
		return kv.NewStore(db, kv.DefaultKey), cleanup, nil
	}

	return nil, nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
}
