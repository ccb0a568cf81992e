package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RolesConfig maps each role to the document paths its corpus is built from.
type RolesConfig struct {
	DefaultRole string              `yaml:"default_role"`
	Roles       map[string][]string `yaml:"roles"`
}

func LoadRoles(path string) (*RolesConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles config: %w", err)
	}

	var cfg RolesConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse roles config: %w", err)
	}

	if strings.TrimSpace(cfg.DefaultRole) == "" {
		return nil, fmt.Errorf("roles config: default_role is required")
	}
	if len(cfg.Roles) == 0 {
		return nil, fmt.Errorf("roles config: at least one role is required")
	}
	if _, ok := cfg.Roles[cfg.DefaultRole]; !ok {
		return nil, fmt.Errorf("roles config: default_role %q has no document list", cfg.DefaultRole)
	}
	for role, paths := range cfg.Roles {
		if len(paths) == 0 {
			return nil, fmt.Errorf("roles config: role %q has no documents", role)
		}
	}
	return &cfg, nil
}
