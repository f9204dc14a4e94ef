// Package config loads the daemon's startup configuration (SPEC_FULL.md §4
// Ambient Stack), grounded on the teacher's pkg/config/config.go: a JSON
// file read through viper, with environment-variable overrides and
// defaults for every field that has a sane one.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// ConfigDirEnvVar names the environment variable that points at the
// directory holding config.json, mirroring the teacher's CONFIG_DIR.
const ConfigDirEnvVar = "CLASSIFIERD_CONFIG_DIR"

// Config is the daemon's full startup configuration.
type Config struct {
	// ArtifactDir holds the embedding model, classifier, and metadata
	// manifest files (spec.md §6 "/etc/classifier/").
	ArtifactDir string `mapstructure:"artifactDir"`

	// Workers is the fixed worker-pool size (spec.md §4.6, default 4).
	Workers int `mapstructure:"workers"`
	// QueueDepth bounds the dispatcher's FIFO job queue (spec.md §4.6).
	QueueDepth int `mapstructure:"queueDepth"`
	// CooldownWindow suppresses duplicate enqueues of the same pid.
	CooldownWindow time.Duration `mapstructure:"cooldownWindow"`

	// JournalLines is the -n value passed to journalctl (spec.md §4.1, §6).
	JournalLines int `mapstructure:"journalLines"`

	// Debug toggles debug-level logging (spec.md §4.9, the -v/--debug flag).
	Debug bool `mapstructure:"debug"`

	// PluginDir, if non-empty, is scanned for dynamically loadable
	// .so post-processor/applier plugins (SPEC_FULL.md §7). Empty (the
	// default) means only the built-in registrations run.
	PluginDir string `mapstructure:"pluginDir"`
	// PluginManifest is an optional plugins.yaml listing the
	// resource-applier ids and workload-key prefixes expected to be
	// present after registration (SPEC_FULL.md §7).
	PluginManifest string `mapstructure:"pluginManifest"`

	// EnablePrometheusExporter gates the /metrics HTTP server.
	EnablePrometheusExporter bool   `mapstructure:"prometheusExporterEnabled"`
	MetricsAddr              string `mapstructure:"metricsAddr"`

	// EnableHeightSubcategory is the spec.md §9 open question on the
	// GStreamer post-processor's height= field. It is loaded (default off)
	// but no code reads it: gstreamer.FetchUsecaseDetails always parses the
	// height into Result.Height, which never changes the signal and is
	// neither logged nor published (see DESIGN.md).
	EnableHeightSubcategory bool `mapstructure:"enableHeightSubcategory"`

	// DumpCSV enables the offline CSV dump side-effect documented in
	// SPEC_FULL.md §9, off by default and with no influence on the
	// classification path.
	DumpCSV      bool   `mapstructure:"dumpCSV"`
	CSVUnfiltered string `mapstructure:"csvUnfilteredDir"`
	CSVPruned     string `mapstructure:"csvPrunedDir"`

	ProcRoot string `mapstructure:"procRoot"`
}

// LoadConfig reads config.json from path (falling back to defaults and
// environment overrides when the file is absent), the same read-or-default
// shape as the teacher's config.LoadConfig.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("artifactDir", "/etc/classifier")
	v.SetDefault("workers", 4)
	v.SetDefault("queueDepth", 256)
	v.SetDefault("cooldownWindow", 2*time.Second)
	v.SetDefault("journalLines", 20)
	v.SetDefault("debug", false)
	v.SetDefault("pluginDir", "")
	v.SetDefault("pluginManifest", "")
	v.SetDefault("prometheusExporterEnabled", false)
	v.SetDefault("metricsAddr", ":9191")
	v.SetDefault("enableHeightSubcategory", false)
	v.SetDefault("dumpCSV", false)
	v.SetDefault("csvUnfilteredDir", "/var/cache/unfiltered")
	v.SetDefault("csvPrunedDir", "/var/cache/pruned")
	v.SetDefault("procRoot", "/proc")

	v.SetEnvPrefix("CLASSIFIERD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
