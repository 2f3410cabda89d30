package config

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyWorklogURL              = "worklog.url"
	KeyWorklogToken            = "worklog.token"
	KeyTrackerURL              = "tracker.url"
	KeyLoggedThresholdPercent  = "reconcile.logged_threshold_percent"
	KeyConflictRatioPercent    = "reconcile.conflict_ratio_percent"
	KeySuggestLimit            = "suggest.limit"
	KeySuggestRejectionMinimum = "suggest.rejection_threshold"
	KeyStoragePath             = "storage.path"
)

type Config struct {
	Worklog   WorklogConfig   `mapstructure:"worklog" validate:"required"`
	Tracker   TrackerConfig   `mapstructure:"tracker" validate:"required"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

type WorklogConfig struct {
	URL   string `mapstructure:"url" validate:"required,url"`
	Token string `mapstructure:"token"`
}

type TrackerConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

type ReconcileConfig struct {
	// LoggedThresholdPercent is the coverage at which a block counts as
	// fully logged. Historical default: 80.
	LoggedThresholdPercent int `mapstructure:"logged_threshold_percent" validate:"gte=1,lte=100"`
	// ConflictRatioPercent scales the candidate duration before the
	// conflict comparison. 100 means "committed overlap exceeds the
	// candidate's own span".
	ConflictRatioPercent int `mapstructure:"conflict_ratio_percent" validate:"gte=100"`
}

type SuggestConfig struct {
	Limit              int `mapstructure:"limit" validate:"gte=1"`
	RejectionThreshold int `mapstructure:"rejection_threshold" validate:"gte=1"`
}

type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SetDefaults sets default values if not provided.
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it.
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# daybook configuration
worklog:
  url: "https://worklog.example.com"
  token: ""

tracker:
  url: "http://localhost:5600"

reconcile:
  logged_threshold_percent: 80
  conflict_ratio_percent: 100

suggest:
  limit: 5
  rejection_threshold: 2

storage:
  path: "./daybook.db"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyWorklogURL, "https://worklog.example.com")
	v.SetDefault(KeyWorklogToken, "")
	v.SetDefault(KeyTrackerURL, "http://localhost:5600")
	v.SetDefault(KeyLoggedThresholdPercent, 80)
	v.SetDefault(KeyConflictRatioPercent, 100)
	v.SetDefault(KeySuggestLimit, 5)
	v.SetDefault(KeySuggestRejectionMinimum, 2)
	v.SetDefault(KeyStoragePath, "./daybook.db")
}
