package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chrissnell/crescentwatch/internal/log"
	"go.uber.org/zap"
)

// PostgresStore implements Store on a PostgreSQL database via gorm
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to PostgreSQL and migrates the grid_runs table
func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to PostgreSQL archive...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL archive: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&GridRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate grid_runs table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// SaveRun stores a completed grid run
func (p *PostgresStore) SaveRun(ctx context.Context, run *GridRun) error {
	if err := p.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to insert grid run: %w", err)
	}
	return nil
}

// GetRun fetches one archived run by ID, point blob included
func (p *PostgresStore) GetRun(ctx context.Context, id string) (*GridRun, error) {
	run := &GridRun{}
	err := p.db.WithContext(ctx).First(run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query grid run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (p *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []RunSummary
	err := p.db.WithContext(ctx).
		Model(&GridRun{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query grid runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying database connection
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
