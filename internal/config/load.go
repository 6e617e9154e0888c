package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	vendorName     = "tacusci"
	appName        = "rppgtracker"
	configFileName = "config.json"
)

var fs afero.Fs = afero.NewOsFs()

func load() (configdef.Values, error) {
	var values configdef.Values

	configPath, err := resolveConfigPath()
	if err != nil {
		return configdef.Values{}, err
	}

	log.Info("Resolved config file location: %s", configPath)
	file, err := readConfigFile(configPath)
	if err != nil {
		return configdef.Values{}, err
	}

	if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	if err := applyDefaults(&values); err != nil {
		return configdef.Values{}, err
	}

	if err = values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	return values, nil
}

// applyDefaults fills in every optional field left out of the file.
func applyDefaults(values *configdef.Values) error {
	if len(values.VideoBackend) == 0 {
		values.VideoBackend = defaultSettings[VIDEOBACKEND].(string)
	}
	if len(values.Source) == 0 {
		values.Source = defaultSettings[SOURCE].(string)
	}
	if len(values.Detector.Type) == 0 {
		values.Detector.Type = defaultSettings[DETECTOR].(string)
	}
	if values.TimeLimit == 0 {
		values.TimeLimit = defaultSettings[TIMELIMIT].(int)
	}
	if len(values.Budget) == 0 {
		values.Budget = defaultSettings[BUDGET].(string)
	}
	if values.WindowSeconds == 0 {
		values.WindowSeconds = defaultSettings[WINDOWSECONDS].(float64)
	}
	if len(values.QuitKey) == 0 {
		values.QuitKey = defaultSettings[QUITKEY].(string)
	}
	if len(values.MQTT.Topic) == 0 {
		values.MQTT.Topic = defaultSettings[MQTTTOPIC].(string)
	}
	if len(values.MQTT.ClientID) == 0 {
		values.MQTT.ClientID = defaultSettings[MQTTCLIENTID].(string)
	}
	if len(values.OutputDir) == 0 {
		cacheDir, err := userCacheDir()
		if err != nil {
			return xerror.Errorf("unable to resolve default output directory: %w", err)
		}
		values.OutputDir = filepath.Join(cacheDir, vendorName, appName, "output")
	}
	return nil
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(content []byte, values *configdef.Values) error {
	err := json.Unmarshal(content, values)
	if err != nil {
		return errors.Errorf("parsing configuration error: %v", err)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	configPath := os.Getenv("RPPG_TRACKER_CONFIG")
	if len(configPath) > 0 {
		return configPath, nil
	}

	configParentDir, err := userConfigDir()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s location: %w", configFileName, err)
	}

	return filepath.Join(
		configParentDir,
		vendorName,
		appName,
		configFileName), nil
}

var userConfigDir = func() (string, error) {
	return os.UserConfigDir()
}

var userCacheDir = func() (string, error) {
	return os.UserCacheDir()
}
