package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig configures the dataset source, local cache, and cleaning policy.
type DataConfig struct {
	// URL is the primary download location on data.gouv.fr.
	URL string `yaml:"url" mapstructure:"url"`
	// MirrorURL is an optional fallback (http(s):// or ftp://) tried when the
	// primary download fails.
	MirrorURL string `yaml:"mirror_url" mapstructure:"mirror_url"`
	CacheDir  string `yaml:"cache_dir" mapstructure:"cache_dir"`
	Filename  string `yaml:"filename" mapstructure:"filename"`
	// Encoding of the source file: "utf8" or "latin1" (annual BAAC exports
	// are ISO 8859-1).
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	// RequiredFields lists the fields whose absence excludes a row during
	// preparation. Valid values: date, severity, department, hour.
	RequiredFields []string `yaml:"required_fields" mapstructure:"required_fields"`
	MinYear        int      `yaml:"min_year" mapstructure:"min_year"`
	MaxYear        int      `yaml:"max_year" mapstructure:"max_year"`
	SnapshotPath   string   `yaml:"snapshot_path" mapstructure:"snapshot_path"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BAACVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.url", "https://www.data.gouv.fr/api/1/datasets/r/4c75d6c0-c927-48ca-92db-5bcce9f17ae7")
	v.SetDefault("data.cache_dir", "data")
	v.SetDefault("data.filename", "accidentsVelofull.csv")
	v.SetDefault("data.encoding", "utf8")
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.required_fields", []string{"date", "severity", "department"})
	v.SetDefault("data.min_year", 2005)
	v.SetDefault("data.max_year", 2023)
	v.SetDefault("data.snapshot_path", "data/baacviz.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger builds and installs the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
