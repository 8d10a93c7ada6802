package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goflare.io/tax/rate_lookup"
)

const (
	ServerStartPort   = ":8080"
	defaultConfigFile = "./config.yaml"
	configPathEnv     = "TAX_CONFIG"
	envPrefix         = "TAX"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DOR    DORConfig    `mapstructure:"dor"`
	Batch  BatchConfig  `mapstructure:"batch"`
	NATS   NATSConfig   `mapstructure:"nats"`
}

type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	HealthAddr string `mapstructure:"health_addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DORConfig points at the Department of Revenue address rate service.
type DORConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

func ProvideApplicationConfig() (*Config, error) {
	path, explicit := os.LookupEnv(configPathEnv)
	if !explicit {
		path = defaultConfigFile
	}

	config, err := LoadConfig(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return LoadConfig("")
	}
	return config, err
}

// LoadConfig reads the YAML file at path, if any, then applies TAX_* environment
// overrides on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ServerStartPort)
	v.SetDefault("server.health_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("dor.endpoint", rate_lookup.DefaultEndpoint)
	v.SetDefault("dor.timeout", 30*time.Second)
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.max_size", 100)
	v.SetDefault("nats.url", "")
}

func (c *Config) validate() error {
	if c.DOR.Endpoint == "" {
		return errors.New("dor.endpoint is required")
	}
	if c.DOR.Timeout < 0 {
		return errors.New("dor.timeout must not be negative")
	}
	if c.Batch.Workers <= 0 {
		return errors.New("batch.workers must be greater than 0")
	}
	if c.Batch.MaxSize <= 0 {
		return errors.New("batch.max_size must be greater than 0")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

func NewLogger(appConfig *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(appConfig.Log.Level)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}

func ProvideHTTPClient(appConfig *Config) *http.Client {
	return &http.Client{
		Timeout: appConfig.DOR.Timeout,
	}
}

func ProvideInterpreter() *rate_lookup.Interpreter {
	return rate_lookup.NewInterpreter()
}

func ProvideRateLookupClient(appConfig *Config, httpClient *http.Client, interpreter *rate_lookup.Interpreter, logger *zap.Logger) (rate_lookup.Client, error) {
	return rate_lookup.NewClient(appConfig.DOR.Endpoint, httpClient, interpreter, logger)
}

// ProvideNATS connects to NATS for lookup events. A blank URL or a failed
// connection leaves events disabled rather than failing startup.
func ProvideNATS(appConfig *Config, logger *zap.Logger) *nats.Conn {
	if appConfig.NATS.URL == "" {
		return nil
	}

	nc, err := nats.Connect(appConfig.NATS.URL, nats.Name("tax-rate-service"))
	if err != nil {
		logger.Error("error connecting to nats", zap.Error(err), zap.String("url", appConfig.NATS.URL))
		return nil
	}
	return nc
}
