package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Engine      EngineYAML       `yaml:"engine,omitempty"`
		Archive     *ArchiveYAML     `yaml:"archive,omitempty"`
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
		Locations   []LocationYAML   `yaml:"locations,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
		Locations:   make([]LocationData, len(yamlConfig.Locations)),
	}

	config.Engine = EngineData{
		StepDeg:   yamlConfig.Engine.StepDeg,
		MaxLat:    yamlConfig.Engine.MaxLat,
		Criterion: yamlConfig.Engine.Criterion,
		BestTime:  yamlConfig.Engine.BestTime,
		Workers:   yamlConfig.Engine.Workers,
	}

	if yamlConfig.Archive != nil {
		config.Archive = &ArchiveData{}
		if yamlConfig.Archive.SQLite != nil {
			config.Archive.SQLite = &SQLiteArchiveData{
				Path: yamlConfig.Archive.SQLite.Path,
			}
		}
		if yamlConfig.Archive.Postgres != nil {
			config.Archive.Postgres = &PostgresArchiveData{
				ConnectionString: yamlConfig.Archive.Postgres.ConnectionString,
			}
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				Cert:       controller.RESTServer.Cert,
				Key:        controller.RESTServer.Key,
				Port:       controller.RESTServer.Port,
				ListenAddr: controller.RESTServer.ListenAddr,
			}
		}

		if controller.Telegram != nil {
			config.Controllers[i].Telegram = &TelegramData{
				BotToken:  controller.Telegram.BotToken,
				ChatID:    controller.Telegram.ChatID,
				Schedule:  controller.Telegram.Schedule,
				Criterion: controller.Telegram.Criterion,
			}
		}
	}

	for i, loc := range yamlConfig.Locations {
		config.Locations[i] = LocationData{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		}
	}

	y.config = config
	return config, nil
}

// GetEngineConfig returns the engine defaults
func (y *YAMLProvider) GetEngineConfig() (*EngineData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Engine, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// GetLocations returns the configured observing sites
func (y *YAMLProvider) GetLocations() ([]LocationData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Locations, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the original format
type EngineYAML struct {
	StepDeg   float64 `yaml:"step-deg,omitempty"`
	MaxLat    float64 `yaml:"max-lat,omitempty"`
	Criterion string  `yaml:"criterion,omitempty"`
	BestTime  bool    `yaml:"best-time,omitempty"`
	Workers   int     `yaml:"workers,omitempty"`
}

type ArchiveYAML struct {
	SQLite   *SQLiteArchiveYAML   `yaml:"sqlite,omitempty"`
	Postgres *PostgresArchiveYAML `yaml:"postgres,omitempty"`
}

type SQLiteArchiveYAML struct {
	Path string `yaml:"path"`
}

type PostgresArchiveYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
	Telegram   *TelegramYAML   `yaml:"telegram,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}

type TelegramYAML struct {
	BotToken  string `yaml:"bot-token,omitempty"`
	ChatID    int64  `yaml:"chat-id,omitempty"`
	Schedule  string `yaml:"schedule,omitempty"`
	Criterion string `yaml:"criterion,omitempty"`
}

type LocationYAML struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}
