// SPDX-License-Identifier: MPL-2.0

// Package config handles modcollect configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/modcollect/config.cue (resolved with
// github.com/adrg/xdg, so ~/Library/Application Support on macOS and %LOCALAPPDATA% on
// Windows). Values are layered: built-in defaults, then the config file, then
// MODCOLLECT_* environment variables.
//
// The config file is validated against the embedded CUE schema (config_schema.cue);
// environment overrides are checked by Config.IsValid after decoding.
package config
