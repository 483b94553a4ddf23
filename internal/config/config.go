package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Fetch struct {
		// proxy URL templates with a %s placeholder for the escaped target;
		// empty means the built-in list
		Proxies        []string `yaml:"proxies"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		RatePerHost    float64  `yaml:"rate_per_host"` // requests/sec per proxy host
	} `yaml:"fetch"`

	Search struct {
		Enabled bool `yaml:"enabled"`
		// keychain account holding the API key; env JOBTRACK_SEARCH_API_KEY
		// wins when set
		KeyringAccount string `yaml:"keyring_account"`
	} `yaml:"search"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
	} `yaml:"email"`

	Polling struct {
		EmailSeconds int `yaml:"email_seconds"`
	} `yaml:"polling"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
