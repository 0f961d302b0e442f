package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_FlagBeatsEnvBeatsDefault(t *testing.T) {
	req := require.New(t)

	t.Setenv("PSEUDOCRONIC_SERVER", "wss://env.example.com")
	t.Setenv("PSEUDOCRONIC_API", "")

	cfg, err := Load(Options{ServerURL: "wss://flag.example.com"})
	req.NoError(err)
	req.Equal("wss://flag.example.com", cfg.ServerURL)
	req.Equal(DefaultAPIBase, cfg.APIBase)

	cfg, err = Load(Options{})
	req.NoError(err)
	req.Equal("wss://env.example.com", cfg.ServerURL)
}

func TestLoad_RejectsNonWebsocketScheme(t *testing.T) {
	req := require.New(t)

	t.Setenv("PSEUDOCRONIC_SERVER", "")
	_, err := Load(Options{ServerURL: "https://example.com"})
	req.Error(err)
}

func TestRoomURL(t *testing.T) {
	req := require.New(t)

	t.Setenv("PSEUDOCRONIC_SERVER", "")
	t.Setenv("PSEUDOCRONIC_API", "")
	cfg, err := Load(Options{ServerURL: "wss://relay.example.com/"})
	req.NoError(err)
	req.Equal("wss://relay.example.com/ws/AB12CD?role=owner", cfg.RoomURL("AB12CD", "owner"))
}
