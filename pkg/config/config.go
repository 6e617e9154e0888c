package config

import (
	"github.com/tauraamui/rppgtracker/internal/config"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}
