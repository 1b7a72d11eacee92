package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/policyguard/policyguard/internal/domain"
	"gopkg.in/yaml.v3"
)

const fileName = ".policyguard.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .policyguard.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the config at path. path may name the file itself or a
// directory holding .policyguard.yaml; empty means the working directory.
// A missing file in a directory yields DefaultConfig. A missing file that was
// named explicitly is an error.
func (l *YAMLLoader) Load(path string) (domain.ClientConfig, error) {
	file, explicit, err := resolve(path)
	if err != nil {
		return domain.ClientConfig{}, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return anchor(domain.DefaultConfig(), file), nil
		}
		return domain.ClientConfig{}, fmt.Errorf("reading %s: %w", file, err)
	}

	var cfg domain.ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(file), err)
	}

	// Validate before merging so typos in the user's raw input are caught.
	if err := cfg.Validate(); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("invalid %s: %w", filepath.Base(file), err)
	}

	return anchor(cfg.WithDefaults(), file), nil
}

// anchor resolves a relative state_dir against the config file's directory.
func anchor(cfg domain.ClientConfig, file string) domain.ClientConfig {
	if !filepath.IsAbs(cfg.StateDir) {
		cfg.StateDir = filepath.Join(filepath.Dir(file), cfg.StateDir)
	}
	return cfg
}

func resolve(path string) (file string, explicit bool, err error) {
	if path == "" {
		return fileName, false, nil
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return filepath.Join(path, fileName), false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return path, true, nil
}
