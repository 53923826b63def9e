package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bsv-blockchain/go-dpp/pkg/constants"
	"github.com/bsv-blockchain/go-dpp/pkg/defs"
)

type cliConfig struct {
	Timeout        time.Duration
	UserAgent      string
	VendorNetworks bool
	LogLevel       defs.LogLevel
	LogFormat      defs.LogHandler
	Memo           string
}

type fileConfig struct {
	Timeout        string `toml:"timeout"`
	UserAgent      string `toml:"user_agent"`
	VendorNetworks bool   `toml:"vendor_networks"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	Memo           string `toml:"memo"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		Timeout:   30 * time.Second,
		UserAgent: constants.UserAgent,
		LogLevel:  defs.LogLevelWarn,
		LogFormat: defs.TextHandler,
	}
}

func loadConfig(path string, cfg cliConfig) (cliConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load dppctl config: %w", err)
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("user_agent") {
		if userAgent := strings.TrimSpace(raw.UserAgent); userAgent != "" {
			cfg.UserAgent = userAgent
		}
	}

	if meta.IsDefined("vendor_networks") {
		cfg.VendorNetworks = raw.VendorNetworks
	}

	if meta.IsDefined("log_level") {
		level, err := defs.ParseLogLevelStr(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = level
	}

	if meta.IsDefined("log_format") {
		format, err := defs.ParseHandlerTypeStr(strings.TrimSpace(raw.LogFormat))
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse log_format: %w", err)
		}
		cfg.LogFormat = format
	}

	if meta.IsDefined("memo") {
		cfg.Memo = raw.Memo
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cliConfig{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}

	return cfg, nil
}
