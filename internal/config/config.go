package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from the environment. Backend picks the collection
// store implementation: "file" keeps one JSON document per collection under
// DataDir, "sqlite" keeps them in the database at DBDSN.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Backend  string `envconfig:"STORE_BACKEND" default:"file"`
	DataDir  string `envconfig:"DATA_DIR" default:"./data"`
	DBDSN    string `envconfig:"DB_DSN" default:"tienda.db"`
	LogFile  string `envconfig:"LOG_FILE" default:""`
	SeedDemo bool   `envconfig:"SEED_DEMO" default:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s STORE_BACKEND=%s DATA_DIR=%s DB_DSN=%s SEED_DEMO=%v",
		cfg.Port, cfg.Backend, cfg.DataDir, cfg.DBDSN, cfg.SeedDemo)
	return cfg, nil
}
