package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	fp "github.com/wyciszone/fpgrowth-with-weight/fptree"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	DEVELOPMENT = "development"
	STAGING     = "staging"
	PRODUCTION  = "production"

	StorageDisk = "disk"
	StorageGCS  = "gcs"
	StorageS3   = "s3"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	// EnvPrefix prefixes every environment override, e.g. FPMINER_MIN_SUPPORT.
	EnvPrefix = "fpminer"

	DefaultTopPatterns    = 10000
	DefaultMinOccurrences = 10
	DefaultRunCacheSize   = 64
	DefaultPort           = 8090
)

type Configuration struct {
	AppName  string `yaml:"app_name" envconfig:"APP_NAME"`
	Env      string `yaml:"env" envconfig:"ENV"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	MinSupport     float64  `yaml:"min_support" envconfig:"MIN_SUPPORT"`
	MinOccurrences float64  `yaml:"min_occurrences" envconfig:"MIN_OCCURRENCES"`
	ExcludedLabels []string `yaml:"excluded_labels" envconfig:"EXCLUDED_LABELS"`
	TopPatterns    int      `yaml:"top_patterns" envconfig:"TOP_PATTERNS"`
	Iterative      bool     `yaml:"iterative" envconfig:"ITERATIVE"`

	// Transactions source. For disk storage InputDir is a filesystem path used as
	// given; for gcs and s3 it is an object prefix inside the bucket.
	InputDir       string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	InputFile      string `yaml:"input_file" envconfig:"INPUT_FILE"`
	LabelColumn    string `yaml:"label_column" envconfig:"LABEL_COLUMN"`
	WeightColumn   string `yaml:"weight_column" envconfig:"WEIGHT_COLUMN"`
	LabelSeparator string `yaml:"label_separator" envconfig:"LABEL_SEPARATOR"`

	ReportFormat string `yaml:"report_format" envconfig:"REPORT_FORMAT"`
	DumpTree     bool   `yaml:"dump_tree" envconfig:"DUMP_TREE"`

	Storage    string `yaml:"storage" envconfig:"STORAGE"`
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	BucketName string `yaml:"bucket_name" envconfig:"BUCKET_NAME"`
	Region     string `yaml:"region" envconfig:"REGION"`

	Port         int `yaml:"port" envconfig:"PORT"`
	RunCacheSize int `yaml:"run_cache_size" envconfig:"RUN_CACHE_SIZE"`
}

var configuration *Configuration

func DefaultConfiguration() *Configuration {
	return &Configuration{
		AppName:        "fpminer",
		Env:            DEVELOPMENT,
		LogLevel:       "info",
		MinOccurrences: DefaultMinOccurrences,
		TopPatterns:    DefaultTopPatterns,
		LabelColumn:    "tags",
		WeightColumn:   "num_hits",
		LabelSeparator: ",",
		ReportFormat:   FormatCSV,
		Storage:        StorageDisk,
		BaseDir:        "/usr/local/var/fpminer",
		Port:           DefaultPort,
		RunCacheSize:   DefaultRunCacheSize,
	}
}

// Load builds a configuration from defaults, then the optional yaml file, then
// FPMINER_* environment variables. Command line flags are applied by the caller.
func Load(path string) (*Configuration, error) {
	c := DefaultConfiguration()
	if path != "" {
		if err := LoadFile(path, c); err != nil {
			return nil, err
		}
	}
	if err := LoadEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string, c *Configuration) error {
	absPath, _ := filepath.Abs(path)
	logCtx := log.WithFields(log.Fields{"file": absPath})

	raw, err := ioutil.ReadFile(absPath)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load config")
		return err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		logCtx.WithError(err).Error("Failed to parse config")
		return errors.Wrap(err, "parse config file")
	}
	return nil
}

func LoadEnv(c *Configuration) error {
	return errors.Wrap(envconfig.Process(EnvPrefix, c), "read environment")
}

func (c *Configuration) Validate() error {
	if c.Env != DEVELOPMENT && c.Env != STAGING && c.Env != PRODUCTION {
		return fmt.Errorf("env [ %s ] not recognised", c.Env)
	}
	if c.Storage != StorageDisk && c.Storage != StorageGCS && c.Storage != StorageS3 {
		return fmt.Errorf("storage [ %s ] not recognised", c.Storage)
	}
	if c.ReportFormat != FormatCSV && c.ReportFormat != FormatXLSX {
		return fmt.Errorf("report format [ %s ] not recognised", c.ReportFormat)
	}
	if (c.Storage == StorageGCS || c.Storage == StorageS3) && c.BucketName == "" {
		return fmt.Errorf("storage [ %s ] needs a bucket name", c.Storage)
	}
	if c.TopPatterns < 0 {
		return fmt.Errorf("top_patterns [ %d ] must not be negative", c.TopPatterns)
	}
	if c.RunCacheSize <= 0 {
		return fmt.Errorf("run_cache_size [ %d ] must be positive", c.RunCacheSize)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.MineConfig().Validate()
}

func (c *Configuration) MineConfig() fp.Config {
	return fp.Config{
		MinSupport:     c.MinSupport,
		MinOccurrences: c.MinOccurrences,
		ExcludedLabels: c.ExcludedLabels,
	}
}

func (c *Configuration) IsDevelopment() bool {
	return c.Env == DEVELOPMENT
}

// Init validates c, sets up logging and makes c available through GetConfig.
func Init(c *Configuration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	configuration = c
	initLogging(c)
	log.WithFields(log.Fields{"app": c.AppName, "env": c.Env, "storage": c.Storage}).Info("Config initialized")
	return nil
}

func initLogging(c *Configuration) {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	level, _ := log.ParseLevel(c.LogLevel)
	if c.IsDevelopment() && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

func GetConfig() *Configuration {
	return configuration
}
