package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Server holds relay server configuration, read from RELAY_* environment
// variables (a .env file is honored when present).
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	Env             string        `envconfig:"ENV" default:"dev"`
	MaxRoomSize     int           `envconfig:"MAX_ROOM_SIZE" default:"32"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadServer reads server configuration from the environment.
func LoadServer() (Server, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Server
	if err := envconfig.Process("relay", &cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}
