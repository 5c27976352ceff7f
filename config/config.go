// Package config loads paginator defaults and logging settings from a YAML
// file and DOCPAGER_* environment variables.
//
//	pagination:
//	  limit: 20
//	  max_limit: 100
//	  id_field: _id
//	  sort: "-created_at name"
//	  select: "-body"
//	  populate: [author]
//	  lean: true
//	logger:
//	  level: info
//	  format: json
//
// Nested keys map to environment variables with "." replaced by "_", e.g.
// DOCPAGER_PAGINATION_MAX_LIMIT=50.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "DOCPAGER"

type Config struct {
	Pagination PaginationConfig `mapstructure:"pagination"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// PaginationConfig holds the defaults injected into a docpager.Paginator.
type PaginationConfig struct {
	Limit      int      `mapstructure:"limit" validate:"min=1"`
	MaxLimit   int      `mapstructure:"max_limit" validate:"min=0"`
	IDField    string   `mapstructure:"id_field" validate:"required"`
	Sort       string   `mapstructure:"sort"`
	Select     string   `mapstructure:"select"`
	Populate   []string `mapstructure:"populate" validate:"dive,required"`
	Lean       bool     `mapstructure:"lean"`
	LeanWithID bool     `mapstructure:"lean_with_id"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Caller bool   `mapstructure:"caller"`
}

var _defaults = map[string]any{
	"pagination.limit":        10,
	"pagination.max_limit":    0,
	"pagination.id_field":     "_id",
	"pagination.sort":         "",
	"pagination.select":       "",
	"pagination.populate":     []string{},
	"pagination.lean":         false,
	"pagination.lean_with_id": true,
	"logger.level":            "info",
	"logger.format":           "json",
	"logger.caller":           false,
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Environment variables are only picked up for keys viper knows about.
	for key, value := range _defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}
