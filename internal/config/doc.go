// Package config loads and validates dubdeck configuration from TOML.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/dubdeck/config.toml, then a project-local dubdeck.toml.
// Missing files fall back to defaults so the CLI stays usable against a
// local mock backend without any setup.
package config
