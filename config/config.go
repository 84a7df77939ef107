// Package config loads service configuration from defaults, an optional
// config.yaml and CESTA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/timeseries"
)

// EnvPrefix prefixes every environment override: analysis.n_lags is read
// from CESTA_ANALYSIS_N_LAGS.
const EnvPrefix = "CESTA"

// Config is the full service configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Server   ServerConfig   `mapstructure:"server"`
	Output   OutputConfig   `mapstructure:"output"`
}

// AppConfig names the running application.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// DataConfig selects where observations are read from.
type DataConfig struct {
	// Source is csv, xlsx or mysql.
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Sheet  string `mapstructure:"sheet"`
	// ByID keys products and establishments by their numeric ids when
	// reading from MySQL.
	ByID bool `mapstructure:"by_id"`
}

// DatabaseConfig is the MySQL connection used when data.source is mysql.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MySQL converts the section for dataset.OpenMySQL.
func (d DatabaseConfig) MySQL() dataset.MySQLConfig {
	return dataset.MySQLConfig{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Name,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

// RedisConfig configures the optional report cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AnalysisConfig holds the default analysis parameters.
type AnalysisConfig struct {
	Frequency     string   `mapstructure:"frequency"`
	NLags         int      `mapstructure:"n_lags"`
	TestWindow    int      `mapstructure:"test_window"`
	Horizon       int      `mapstructure:"horizon"`
	MaxLag        int      `mapstructure:"max_lag"`
	MaxDiffPasses int      `mapstructure:"max_diff_passes"`
	Alpha         float64  `mapstructure:"alpha"`
	MAPEObjective float64  `mapstructure:"mape_objective"`
	Estimators    int      `mapstructure:"estimators"`
	Seed          int64    `mapstructure:"seed"`
	Workers       int      `mapstructure:"workers"`
	Categories    []string `mapstructure:"categories"`
}

// ParsedFrequency returns the Frequency named by the section.
func (a AnalysisConfig) ParsedFrequency() (timeseries.Frequency, error) {
	return timeseries.ParseFrequency(a.Frequency)
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// OutputConfig is where the batch command writes its files.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads config.yaml from the given directories (./configs and . by
// default), applies environment overrides and validates the result. A
// missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cestabasica")
	v.SetDefault("app.environment", "development")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.path", "data/icb_data.csv")
	v.SetDefault("data.sheet", "")
	v.SetDefault("data.by_id", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "cesta_basica")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cestabasica:")
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("analysis.frequency", "W-MON")
	v.SetDefault("analysis.n_lags", 4)
	v.SetDefault("analysis.test_window", 12)
	v.SetDefault("analysis.horizon", 12)
	v.SetDefault("analysis.max_lag", 8)
	v.SetDefault("analysis.max_diff_passes", 2)
	v.SetDefault("analysis.alpha", 0.05)
	v.SetDefault("analysis.mape_objective", 0.10)
	v.SetDefault("analysis.estimators", 100)
	v.SetDefault("analysis.seed", 42)
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("analysis.categories", dataset.DefaultCategories)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "2m")

	v.SetDefault("output.dir", "output")
}

// Validate rejects values no analysis could run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Data.Source {
	case "csv", "xlsx", "mysql":
	default:
		errs = append(errs, fmt.Errorf("data.source must be csv, xlsx or mysql, got %q", c.Data.Source))
	}
	if c.Data.Source != "mysql" && c.Data.Path == "" {
		errs = append(errs, errors.New("data.path is required for file sources"))
	}

	a := c.Analysis
	if _, err := a.ParsedFrequency(); err != nil {
		errs = append(errs, fmt.Errorf("analysis.frequency: %w", err))
	}
	if a.NLags < 1 {
		errs = append(errs, fmt.Errorf("analysis.n_lags must be at least 1, got %d", a.NLags))
	}
	if a.TestWindow < 1 {
		errs = append(errs, fmt.Errorf("analysis.test_window must be at least 1, got %d", a.TestWindow))
	}
	if a.Horizon < 1 {
		errs = append(errs, fmt.Errorf("analysis.horizon must be at least 1, got %d", a.Horizon))
	}
	if a.MaxLag < 1 {
		errs = append(errs, fmt.Errorf("analysis.max_lag must be at least 1, got %d", a.MaxLag))
	}
	if a.MaxDiffPasses < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_diff_passes must not be negative, got %d", a.MaxDiffPasses))
	}
	if a.Alpha <= 0 || a.Alpha >= 1 {
		errs = append(errs, fmt.Errorf("analysis.alpha must be in (0, 1), got %g", a.Alpha))
	}
	if a.MAPEObjective <= 0 {
		errs = append(errs, fmt.Errorf("analysis.mape_objective must be positive, got %g", a.MAPEObjective))
	}
	if a.Estimators < 1 {
		errs = append(errs, fmt.Errorf("analysis.estimators must be at least 1, got %d", a.Estimators))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
