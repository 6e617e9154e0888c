package config

import (
	"github.com/tauraamui/rppgtracker/internal/config"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}
