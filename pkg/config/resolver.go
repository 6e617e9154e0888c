package config

import (
	"github.com/tauraamui/rppgtracker/internal/config"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultResolver()
}
