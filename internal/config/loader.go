package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = "spider.yaml"

// searchNames are the file names FindConfigFile looks for in the current
// directory, in order.
var searchNames = []string{"spider.yaml", "spider.yml", "spider.toml"}

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads the configuration file at path into c.
// Keys missing from the file keep the values c already has.
// Files ending in ".toml" are decoded as TOML, anything else as YAML.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string, c *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	f := newFile(c)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), f); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, f); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	f.Apply(c)
	c.ConfigFilePath = path
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for spider.yaml, spider.yml or spider.toml in the current directory
// 3. Look for spider.yaml in the XDG config directory
//
// An explicit path that does not exist is an error. When nothing is found
// the empty string is returned and defaults apply.
func FindConfigFile(configPath string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return configPath, nil
	}

	for _, name := range searchNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}
	return "", nil
}

// LoadSeeds reads seed URLs from path, one per line.
// Surrounding whitespace is trimmed; blank lines and lines starting with
// '#' are skipped. Whether each line is a usable URL is decided by the
// crawler.
func LoadSeeds(path string) ([]string, error) {
	file, err := os.Open(path) //nolint:gosec // User-provided seed path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSeedFileNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	seeds := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return seeds, nil
}
