package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/bookshelf/pkg/auth"
	"github.com/Astemirdum/bookshelf/pkg/kafka"
	"github.com/Astemirdum/bookshelf/pkg/logger"
	"github.com/Astemirdum/bookshelf/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Env string

const (
	EnvDev  Env = "dev"
	EnvProd Env = "prod"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Config struct {
	Env            Env           `yaml:"env" envconfig:"ENV" default:"dev"`
	Server         HTTPServer    `yaml:"server"`
	Database       postgres.DB   `yaml:"db"`
	Auth           auth.Config   `yaml:"auth"`
	Kafka          kafka.Config  `yaml:"kafka"`
	Log            logger.Log    `yaml:"log"`
	DisableSwagger bool          `yaml:"disableSwagger" envconfig:"DISABLE_SWAGGER"`
	ShutdownWait   time.Duration `yaml:"shutdownWait" envconfig:"SHUTDOWN_WAIT" default:"5s"`
}

func (c Config) IsProd() bool {
	return c.Env == EnvProd
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once and exits on failure.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		c, err := Load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = c
		printConfig(cfg)
	})

	return cfg
}

// Load reads config from environment. Options set defaults that the
// environment may override.
func Load(ops ...Option) (*Config, error) {
	var config Config
	for _, op := range ops {
		op(&config)
	}
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.Wrap(err, "envconfig")
	}
	if config.Auth.Secret == "" {
		return nil, errors.New("JWT_SECRET is empty")
	}
	switch config.Env {
	case EnvDev, EnvProd:
	default:
		return nil, errors.Errorf("unknown ENV %q", config.Env)
	}
	return &config, nil
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
