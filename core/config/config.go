// Package config loads and validates the aish configuration directory.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	// ConfigurationName is the name of the configuration file inside the
	// configuration directory.
	ConfigurationName = "config.yaml"
	// SessionLogName is the JSON-lines session event log.
	SessionLogName = "session.log"
	// HistoryName is the readline history file.
	HistoryName = "history"
	// CacheName is the assistant's response cache.
	CacheName = "cache.json"

	// DefaultConfigDir is the per-user configuration directory, relative to
	// the home directory.
	DefaultConfigDir = ".aish"
)

// Configuration holds the user-tunable settings for the shell and its
// assistant.
type Configuration struct {
	configFs  afero.Fs
	configDir string

	// Model is the Gemini model used for command generation and error
	// explanation.
	Model string `json:"model" validate:"required"`

	// Temperature is the sampling temperature for the model.
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`

	// MaxOutputTokens bounds the model's response size. Zero means the
	// model default.
	MaxOutputTokens int32 `json:"max_output_tokens" validate:"gte=0"`

	// ExplainErrors controls whether failed commands are re-run with a
	// captured error stream and explained by the assistant.
	ExplainErrors bool `json:"explain_errors"`

	// Prompt is the PS1-like prompt template. Supported escapes: \u user,
	// \h host, \w working directory, \$ dollar.
	Prompt string `json:"prompt" validate:"required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// Dir returns the configuration directory.
func (c *Configuration) Dir() string {
	return c.configDir
}

// HistoryPath returns the path of the readline history file.
func (c *Configuration) HistoryPath() string {
	return filepath.Join(c.configDir, HistoryName)
}

// CachePath returns the path of the assistant response cache.
func (c *Configuration) CachePath() string {
	return filepath.Join(c.configDir, CacheName)
}

// OpenSessionLog opens the session event log in an append only state.
func (c *Configuration) OpenSessionLog() (afero.File, error) {
	return c.fs().OpenFile(filepath.Join(c.configDir, SessionLogName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadSessionLog opens the session event log for reading.
func (c *Configuration) ReadSessionLog() (afero.File, error) {
	return c.fs().OpenFile(filepath.Join(c.configDir, SessionLogName),
		os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultDir returns the default per-user configuration directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Degrade to a relative directory rather than failing startup.
		return DefaultConfigDir
	}
	return filepath.Join(home, DefaultConfigDir)
}
