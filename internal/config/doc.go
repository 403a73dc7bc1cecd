// Package config provides the configuration of a minispider crawl.
// It defines the crawl settings, loads them from YAML or TOML files, and
// reads the seed URL list.
package config
