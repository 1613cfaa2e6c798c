package main

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/trailhuang/mechshell/pkg/types"
)

// fileConfig mirrors types.Config for TOML decoding; zero-valued fields in
// the file leave the corresponding default untouched.
type fileConfig struct {
	Prompt          string `toml:"prompt"`
	WelcomeMsg      string `toml:"welcome_msg"`
	MaxHistory      int    `toml:"max_history"`
	PromptSeparator string `toml:"prompt_separator"`
}

// loadConfig starts from types.DefaultConfig and applies any overrides
// found in a TOML file at path. A missing file is not an error.
func loadConfig(path string) (*types.Config, error) {
	cfg := types.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	if fc.Prompt != "" {
		cfg.Prompt = fc.Prompt
	}
	if fc.WelcomeMsg != "" {
		cfg.WelcomeMsg = fc.WelcomeMsg
	}
	if fc.MaxHistory != 0 {
		cfg.MaxHistory = fc.MaxHistory
	}
	if fc.PromptSeparator != "" {
		cfg.PromptSeparator = fc.PromptSeparator
	}
	return cfg, nil
}
