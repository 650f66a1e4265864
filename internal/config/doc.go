// Package config loads libcheck settings from ~/.config/libcheck/config.toml.
//
// A missing file is not an error; every field has a working default so a
// fresh install can point at a local backend without any setup. Only the RSS
// feed URL has no default; reading-list import is unavailable until it is
// configured.
package config
