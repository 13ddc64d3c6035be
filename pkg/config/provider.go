// Package config defines the configuration model for crescentwatch and the
// providers that load it from YAML files or SQLite databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetEngineConfig() (*EngineData, error)
	GetControllers() ([]ControllerData, error)
	GetLocations() ([]LocationData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Engine      EngineData       `json:"engine" yaml:"engine"`
	Archive     *ArchiveData     `json:"archive,omitempty" yaml:"archive,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty" yaml:"controllers,omitempty"`
	Locations   []LocationData   `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// EngineData holds the visibility engine defaults applied when a request
// does not override them
type EngineData struct {
	StepDeg   float64 `json:"step_deg,omitempty" yaml:"step_deg,omitempty"`
	MaxLat    float64 `json:"max_lat,omitempty" yaml:"max_lat,omitempty"`
	Criterion string  `json:"criterion,omitempty" yaml:"criterion,omitempty"`
	BestTime  bool    `json:"best_time,omitempty" yaml:"best_time,omitempty"`
	Workers   int     `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// ArchiveData holds the configuration for grid-run archive backends
type ArchiveData struct {
	SQLite   *SQLiteArchiveData   `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	Postgres *PostgresArchiveData `json:"postgres,omitempty" yaml:"postgres,omitempty"`
}

type SQLiteArchiveData struct {
	Path string `json:"path" yaml:"path"`
}

type PostgresArchiveData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// ControllerData holds the configuration for the controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
	Telegram   *TelegramData   `json:"telegram,omitempty" yaml:"telegram,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

// TelegramData configures the crescent alert notifier
type TelegramData struct {
	BotToken  string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	ChatID    int64  `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
	Schedule  string `json:"schedule,omitempty" yaml:"schedule,omitempty"` // cron expression, UTC
	Criterion string `json:"criterion,omitempty" yaml:"criterion,omitempty"`
}

// LocationData is a named observing site used by the notifier and CLIs
type LocationData struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}
