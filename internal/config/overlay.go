package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ProxiesFile struct {
	Fetch struct {
		Proxies []string `yaml:"proxies"`
	} `yaml:"fetch"`
}

// OverlayProxies merges an optional proxies.yml over the base config, so the
// proxy cascade can be swapped without touching the main file.
func OverlayProxies(cfg *Config, proxiesPath string) error {
	b, err := os.ReadFile(proxiesPath)
	if err != nil {
		// missing overlay file should not kill startup
		return nil
	}

	var pf ProxiesFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return err
	}

	if len(pf.Fetch.Proxies) > 0 {
		cfg.Fetch.Proxies = pf.Fetch.Proxies
	}
	return nil
}
