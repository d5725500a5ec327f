package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, production
	LoggerLevel string `env:"LOGGER_LEVEL" envDefault:"INFO"`

	// CRM relay
	CRMAPIEndpoint string        `env:"CRM_API_ENDPOINT"`
	CRMTimeout     time.Duration `env:"CRM_TIMEOUT" envDefault:"10s"`
	RelayTimeout   time.Duration `env:"RELAY_TIMEOUT" envDefault:"15s"`

	// Contact form
	SiteURL         string        `env:"SITE_URL" envDefault:"http://localhost:8080"`
	FormName        string        `env:"FORM_NAME" envDefault:"contact"`
	FormID          string        `env:"FORM_ID" envDefault:"contact-form"`
	FormTitle       string        `env:"FORM_TITLE" envDefault:"Contattaci"`
	FormSubjects    []string      `env:"FORM_SUBJECTS" envSeparator:"," envDefault:"Informazioni,Supporto,Preventivo,Altro"`
	UTMCookieMaxAge time.Duration `env:"UTM_COOKIE_MAX_AGE" envDefault:"720h"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// LoadConfig reads an optional .env file and then the process environment.
// The returned warnings list settings that are missing but not fatal.
func LoadConfig() (*Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, fmt.Sprintf("cannot load .env file: %v, using environment variables", err))
	}

	cfg, err := Parse()
	if err != nil {
		return nil, warnings, err
	}
	if cfg.CRMAPIEndpoint == "" {
		warnings = append(warnings, "CRM_API_ENDPOINT is not set, every relay invocation will fail")
	}
	return cfg, warnings, nil
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment variables: %w", err)
	}
	cfg.FormSubjects = trimAll(cfg.FormSubjects)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.FormName == "" {
		return errors.New("FORM_NAME must not be empty")
	}
	if len(c.FormSubjects) == 0 {
		return errors.New("FORM_SUBJECTS must list at least one subject")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
