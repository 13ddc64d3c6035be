package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	engine, err := s.GetEngineConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}
	config.Engine = *engine

	archive, err := s.getArchiveConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load archive config: %w", err)
	}
	config.Archive = archive

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	locations, err := s.GetLocations()
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	config.Locations = locations

	return config, nil
}

// GetEngineConfig returns the engine defaults from the database
func (s *SQLiteProvider) GetEngineConfig() (*EngineData, error) {
	query := `
		SELECT step_deg, max_lat, criterion, best_time, workers
		FROM engine_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	engine := &EngineData{}
	var stepDeg, maxLat sql.NullFloat64
	var criterion sql.NullString
	var bestTime sql.NullBool
	var workers sql.NullInt64

	err := s.db.QueryRow(query).Scan(&stepDeg, &maxLat, &criterion, &bestTime, &workers)
	if err == sql.ErrNoRows {
		return engine, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query engine config: %w", err)
	}

	if stepDeg.Valid {
		engine.StepDeg = stepDeg.Float64
	}
	if maxLat.Valid {
		engine.MaxLat = maxLat.Float64
	}
	if criterion.Valid {
		engine.Criterion = criterion.String
	}
	if bestTime.Valid {
		engine.BestTime = bestTime.Bool
	}
	if workers.Valid {
		engine.Workers = int(workers.Int64)
	}

	return engine, nil
}

func (s *SQLiteProvider) getArchiveConfig() (*ArchiveData, error) {
	query := `
		SELECT backend_type, sqlite_path, postgres_connection_string
		FROM archive_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND enabled = 1
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive configs: %w", err)
	}
	defer rows.Close()

	var archive *ArchiveData
	for rows.Next() {
		var backendType string
		var sqlitePath, pgConnString sql.NullString

		if err := rows.Scan(&backendType, &sqlitePath, &pgConnString); err != nil {
			return nil, fmt.Errorf("failed to scan archive config row: %w", err)
		}

		if archive == nil {
			archive = &ArchiveData{}
		}

		switch backendType {
		case "sqlite":
			if sqlitePath.Valid {
				archive.SQLite = &SQLiteArchiveData{Path: sqlitePath.String}
			}
		case "postgres":
			if pgConnString.Valid {
				archive.Postgres = &PostgresArchiveData{ConnectionString: pgConnString.String}
			}
		}
	}

	return archive, rows.Err()
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT controller_type,
		       -- REST server fields
		       rest_cert, rest_key, rest_listen_addr, rest_port,
		       -- Telegram fields
		       telegram_bot_token, telegram_chat_id, telegram_schedule, telegram_criterion
		FROM controller_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND enabled = 1
		ORDER BY controller_type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controller configs: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controller ControllerData
		var restCert, restKey, restListenAddr sql.NullString
		var restPort sql.NullInt64
		var tgBotToken, tgSchedule, tgCriterion sql.NullString
		var tgChatID sql.NullInt64

		err := rows.Scan(
			&controller.Type,
			&restCert, &restKey, &restListenAddr, &restPort,
			&tgBotToken, &tgChatID, &tgSchedule, &tgCriterion,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		switch controller.Type {
		case "rest":
			rest := &RESTServerData{}
			if restCert.Valid {
				rest.Cert = restCert.String
			}
			if restKey.Valid {
				rest.Key = restKey.String
			}
			if restListenAddr.Valid {
				rest.ListenAddr = restListenAddr.String
			}
			if restPort.Valid {
				rest.Port = int(restPort.Int64)
			}
			controller.RESTServer = rest
		case "telegram":
			tg := &TelegramData{}
			if tgBotToken.Valid {
				tg.BotToken = tgBotToken.String
			}
			if tgChatID.Valid {
				tg.ChatID = tgChatID.Int64
			}
			if tgSchedule.Valid {
				tg.Schedule = tgSchedule.String
			}
			if tgCriterion.Valid {
				tg.Criterion = tgCriterion.String
			}
			controller.Telegram = tg
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// GetLocations returns the observing sites from the database
func (s *SQLiteProvider) GetLocations() ([]LocationData, error) {
	query := `
		SELECT name, latitude, longitude
		FROM locations
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []LocationData
	for rows.Next() {
		var loc LocationData
		if err := rows.Scan(&loc.Name, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}

// IsReadOnly returns false since SQLite configs can be edited in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
