package config

import (
	"os"
	"strings"
)

// ModeEnvKey selects which <name>.<mode>.yaml overlays are loaded.
const ModeEnvKey = "GO_ENV_MODE"

type Mode string

const (
	DevMode  Mode = "development"
	ProMode  Mode = "production"
	TestMode Mode = "test"
)

func ParseMode(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// CurrentMode reads GO_ENV_MODE, defaulting to development.
func CurrentMode() Mode {
	return ParseMode(os.Getenv(ModeEnvKey))
}

// aliases returns the file suffixes accepted for m, canonical name first.
func (m Mode) aliases() []string {
	switch m {
	case ProMode:
		return []string{"production", "prod"}
	case TestMode:
		return []string{"test"}
	default:
		return []string{"development", "dev"}
	}
}
