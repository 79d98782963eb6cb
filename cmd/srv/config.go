package main

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arbuzhub/casino-backend/config"
)

// loadConfig reads the toml config named by CONFIG_PATH and lets a few
// secrets be overridden from the environment so they stay out of the file.
func loadConfig() (config.Configs, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config.toml"
	}

	var cfg config.Configs
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config.Configs{}, err
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}

	if v := os.Getenv("GATEWAY_ACTOR_KEY"); v != "" {
		cfg.Auth.GatewayActorKey = v
	}

	if v := os.Getenv("ADMIN_ACTORS"); v != "" {
		cfg.AdminActors = strings.Split(v, ",")
	}

	return cfg, nil
}
