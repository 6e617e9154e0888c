package config

import (
	"github.com/tauraamui/rppgtracker/internal/config"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
)

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}
