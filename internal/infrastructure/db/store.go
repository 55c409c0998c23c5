package db

import (
	"context"
	"fmt"

	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store bundles the task repository with the lifecycle of its backing
// connection.
type Store struct {
	Tasks ports.TaskRepository
	Name  string

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Store, error) {
	switch cfg.Driver {
	case "mongo":
		client, err := NewMongoConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		coll := client.Database(cfg.Database).Collection(cfg.Collection)
		if err := EnsureIndexes(ctx, coll); err != nil {
			log.Warnw("task_store_index_failed", "error", err)
		}
		log.Infow("task_store_connected", "driver", cfg.Driver, "database", cfg.Database)
		return &Store{
			Tasks: NewMongoTaskRepository(coll, cfg.Timeout, log),
			Name:  cfg.Driver,
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
			close: client.Disconnect,
		}, nil

	case "postgres", "sqlite":
		gdb, err := NewGormConnection(cfg)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(gdb); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		log.Infow("task_store_connected", "driver", cfg.Driver)
		return &Store{
			Tasks: NewTaskRepository(gdb, log),
			Name:  cfg.Driver,
			ping:  sqlDB.PingContext,
			close: func(context.Context) error {
				return sqlDB.Close()
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
}
