// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package config loads the mailsend configuration from a YAML file, with environment
// variables taking precedence over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	mail "github.com/codesaur-php/HTTP-Client"
)

// EnvPrefix is the prefix of all environment variables read by Load and LoadFromFile
const EnvPrefix = "MAILSEND_"

// Transports known to the mailsend command
const (
	TransportSMTP     = "smtp"
	TransportSendmail = "sendmail"
	TransportSES      = "ses"
	TransportStdout   = "stdout"
)

// ErrInvalidConfig is wrapped by all errors returned from Config.Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the complete mailsend configuration.
type Config struct {
	Transport string         `yaml:"transport"`
	SMTP      SMTPConfig     `yaml:"smtp"`
	Sendmail  SendmailConfig `yaml:"sendmail"`
	SES       SESConfig      `yaml:"ses"`
	HTTP      HTTPConfig     `yaml:"http"`
	Logging   LoggingConfig  `yaml:"logging"`
	Message   MessageConfig  `yaml:"message"`
}

// SMTPConfig holds the settings of the SMTP transport.
type SMTPConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"` // 0 selects the default port for SSL or STARTTLS
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	Auth               string        `yaml:"auth"`
	TLSPolicy          string        `yaml:"tls_policy"`
	SSL                bool          `yaml:"ssl"`
	HELO               string        `yaml:"helo"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// SendmailConfig holds the settings of the sendmail transport.
type SendmailConfig struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args"`
}

// SESConfig holds the settings of the AWS SES transport.
type SESConfig struct {
	Region           string `yaml:"region"`
	AccessKeyID      string `yaml:"access_key_id"`
	SecretAccessKey  string `yaml:"secret_access_key"`
	ConfigurationSet string `yaml:"configuration_set"`
}

// HTTPConfig holds the settings of the HTTP client fetching remote attachments.
type HTTPConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	UserAgent          string        `yaml:"user_agent"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer, then overrides it
// with environment variables.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()
	return cfg, nil
}

// Validate checks that the selected transport has the settings it needs.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("%w: smtp.host is required for the smtp transport", ErrInvalidConfig)
		}
		if _, err := mail.ParseSMTPAuthType(c.SMTP.Auth); err != nil {
			return fmt.Errorf("%w: smtp.auth: %w", ErrInvalidConfig, err)
		}
	case TransportSES:
		if c.SES.Region == "" {
			return fmt.Errorf("%w: ses.region is required for the ses transport", ErrInvalidConfig)
		}
	case TransportSendmail, TransportStdout:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	return nil
}

// applyDefaults sets default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Transport = TransportStdout
	c.SMTP.TLSPolicy = "mandatory"
	c.SMTP.Timeout = mail.DefaultTimeout
	c.Sendmail.Path = mail.SendmailPath
	c.HTTP.Timeout = 30 * time.Second
	c.Logging.Level = "info"
	c.Logging.Format = "text"
}

// applyEnvVars overrides configuration with environment variable values. Only non-empty
// environment variables override existing values.
func (c *Config) applyEnvVars() {
	setString(&c.Transport, "TRANSPORT")

	setString(&c.SMTP.Host, "SMTP_HOST")
	if v := getEnv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.Auth, "SMTP_AUTH")
	setString(&c.SMTP.TLSPolicy, "SMTP_TLS_POLICY")
	setString(&c.SMTP.HELO, "SMTP_HELO")
	setBool(&c.SMTP.SSL, "SMTP_SSL")
	setDuration(&c.SMTP.Timeout, "SMTP_TIMEOUT")

	setString(&c.Sendmail.Path, "SENDMAIL_PATH")

	setString(&c.SES.Region, "SES_REGION")
	setString(&c.SES.AccessKeyID, "SES_ACCESS_KEY_ID")
	setString(&c.SES.SecretAccessKey, "SES_SECRET_ACCESS_KEY")
	setString(&c.SES.ConfigurationSet, "SES_CONFIGURATION_SET")

	setDuration(&c.HTTP.Timeout, "HTTP_TIMEOUT")
	setString(&c.HTTP.UserAgent, "HTTP_USER_AGENT")
	setBool(&c.HTTP.InsecureSkipVerify, "HTTP_INSECURE_SKIP_VERIFY")

	if v := getEnv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := getEnv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
}

func getEnv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

func setString(dst *string, name string) {
	if v := getEnv(name); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, name string) {
	if v := getEnv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if v := getEnv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
