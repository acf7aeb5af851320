// Package config loads the consentaudit service configuration from defaults,
// an optional YAML file and CONSENTAUDIT_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

const (
	// envPrefix is the prefix of environment variables read into the config
	envPrefix = "CONSENTAUDIT_"
	// DefaultConfigFilePath is the config file used when none is given
	DefaultConfigFilePath = "./config/.config.yaml"
)

// Config holds the service configuration
type Config struct {
	// Server contains the HTTP server settings
	Server Server `json:"server" koanf:"server"`
	// Fetch contains the page fetching settings
	Fetch Fetch `json:"fetch" koanf:"fetch"`
	// Taxonomy contains the rule data settings
	Taxonomy Taxonomy `json:"taxonomy" koanf:"taxonomy"`
	// Audit contains the audit orchestration settings
	Audit Audit `json:"audit" koanf:"audit"`
	// Slack contains the Slack notification settings
	Slack Slack `json:"slack" koanf:"slack"`
}

// Server holds the HTTP server settings
type Server struct {
	// Listen is the address the server binds to
	Listen string `json:"listen" koanf:"listen" default:":8080"`
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `json:"readtimeout" koanf:"readtimeout" default:"30s"`
	// WriteTimeout is the maximum duration before timing out writes of a response
	WriteTimeout time.Duration `json:"writetimeout" koanf:"writetimeout" default:"180s"`
	// ShutdownGracePeriod is the time allowed for in-flight requests on shutdown
	ShutdownGracePeriod time.Duration `json:"shutdowngraceperiod" koanf:"shutdowngraceperiod" default:"10s"`
	// MaxBodySize is the maximum request body size in bytes
	MaxBodySize int64 `json:"maxbodysize" koanf:"maxbodysize" default:"4194304"`
	// Debug enables debug logging
	Debug bool `json:"debug" koanf:"debug" default:"false"`
	// Pretty enables human readable logging
	Pretty bool `json:"pretty" koanf:"pretty" default:"false"`
}

// Fetch holds the page fetching settings
type Fetch struct {
	// Timeout is the per-request timeout for page fetches
	Timeout time.Duration `json:"timeout" koanf:"timeout" default:"10s"`
	// MaxRedirects is the maximum number of redirects followed
	MaxRedirects int `json:"maxredirects" koanf:"maxredirects" default:"5"`
	// MaxBodySize is the maximum response body size read in bytes
	MaxBodySize int64 `json:"maxbodysize" koanf:"maxbodysize" default:"2097152"`
	// UserAgent is the User-Agent sent to audited sites
	UserAgent string `json:"useragent" koanf:"useragent" default:"Mozilla/5.0 (compatible; ConsentAudit/1.0)"`
}

// Taxonomy holds the rule data settings
type Taxonomy struct {
	// Dir is a directory of YAML rule files that extend or replace the builtin rule sets
	Dir string `json:"dir" koanf:"dir"`
	// Watch reloads the rule directory when its files change
	Watch bool `json:"watch" koanf:"watch" default:"false"`
	// Debounce is the quiet period after a change before reloading
	Debounce time.Duration `json:"debounce" koanf:"debounce" default:"500ms"`
}

// Audit holds the audit orchestration settings
type Audit struct {
	// Timeout bounds a single audit request
	Timeout time.Duration `json:"timeout" koanf:"timeout" default:"60s"`
	// Concurrency is the number of targets audited in parallel in a batch
	Concurrency int `json:"concurrency" koanf:"concurrency" default:"4"`
	// MaxTargets is the maximum number of targets in one batch
	MaxTargets int `json:"maxtargets" koanf:"maxtargets" default:"25"`
	// DetectTechnologies enables technology and hosting provider detection
	DetectTechnologies bool `json:"detecttechnologies" koanf:"detecttechnologies" default:"true"`
	// NotifyThreshold is the consent or policy score below which a report is sent to Slack
	NotifyThreshold int `json:"notifythreshold" koanf:"notifythreshold" default:"50"`
}

// Slack holds the Slack notification settings
type Slack struct {
	// WebhookURL is the Slack incoming webhook URL, empty to disable notifications
	WebhookURL string `json:"webhookurl" koanf:"webhookurl" sensitive:"true"`
	// RequestTimeout is the timeout for webhook requests
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"10s"`
}

// Load reads the configuration. Defaults are applied first, then the YAML
// file at cfgFile when it exists, then environment variables.
func Load(cfgFile *string) (*Config, error) {
	k := koanf.New(".")

	cfg := &Config{}
	defaults.SetDefaults(cfg)

	path := DefaultConfigFilePath
	if cfgFile != nil && *cfgFile != "" {
		path = *cfgFile
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return cfg, nil
}

// envKey maps CONSENTAUDIT_SERVER_LISTEN to server.listen
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
}
