// Package app loads the base configuration shared by every command and sets
// up logging.
package app

import (
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultEnvFile is loaded into the environment, if present, before the
// config is read.
const DefaultEnvFile = ".env"

// LoadConfig reads the base config from envFile, configPath and the
// environment. Variables already set in the environment win over envFile,
// and the environment wins over configPath. Missing files are skipped.
func LoadConfig(envFile, configPath string) (BaseConfig, error) {
	if len(envFile) > 0 {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return BaseConfig{}, errors.Wrapf(err, "failed to load %s", envFile)
		}
	}

	v := viper.New()
	bindEnv(v)

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set, so a
	// missing explicit file is checked for here.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return BaseConfig{}, errors.Wrap(err, "failed to load config")
			}
		} else if !os.IsNotExist(err) {
			return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}

	return config, nil
}

// ConfigureLogger applies the level and format of config to the standard
// logger, writing to out.
func ConfigureLogger(config BaseConfig, out io.Writer) {
	switch strings.ToLower(config.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(out)
}
