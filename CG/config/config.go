// Package config resolves the run settings of the cg command from flags,
// environment, an optional YAML file and defaults, in that order.
package config

import (
	"runtime"

	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/params"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultFile is looked up in the working directory when no --config is
// given. Its absence is not an error.
const DefaultFile = "npb-cg"

// Config is the resolved configuration of one run.
type Config struct {
	Class       string `mapstructure:"class"`
	Threads     int    `mapstructure:"threads"`
	Timers      bool   `mapstructure:"timers"`
	LogLevel    string `mapstructure:"log_level"`
	ReportFile  string `mapstructure:"report_file"`
	MetricsFile string `mapstructure:"metrics_file"`

	// Params is the class table row named by Class.
	Params params.Class `mapstructure:"-"`
}

// envKeys maps each key to its environment variable. GO_NUM_THREADS and
// CLASS are the names the NPB-GO benchmarks always read.
var envKeys = map[string]string{
	"class":        "CLASS",
	"threads":      "GO_NUM_THREADS",
	"timers":       "NPB_TIMERS",
	"log_level":    "NPB_LOG_LEVEL",
	"report_file":  "NPB_REPORT_FILE",
	"metrics_file": "NPB_METRICS_FILE",
}

// flagKeys maps each key to the command-line flag bound to it.
var flagKeys = map[string]string{
	"class":        "class",
	"threads":      "threads",
	"timers":       "timers",
	"log_level":    "log-level",
	"report_file":  "report",
	"metrics_file": "metrics-file",
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("class", "S")
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("timers", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("report_file", "")
	v.SetDefault("metrics_file", "")
}

// RegisterFlags declares the configuration flags on cmd.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "YAML configuration file")
	f.String("class", "S", "problem class (S, W, A, B, C, D, E)")
	f.IntP("threads", "t", runtime.NumCPU(), "number of worker goroutines")
	f.Bool("timers", false, "print the timer section breakdown")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("report", "", "write the result as YAML to this file")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile")
}

// BindFlags makes the flags of cmd override every other source. Only
// flags set on the command line take effect.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return errors.Errorf("flag --%s is not registered", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}
	return nil
}

// Load reads the configuration file and decodes v. An empty path falls
// back to DefaultFile in the working directory, which may be missing; an
// explicit path must exist.
func Load(v *viper.Viper, path string, log logrus.FieldLogger) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName(DefaultFile)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read default config")
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.WithField("file", used).Debug("config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if cfg.Threads <= 0 {
		log.WithField("threads", cfg.Threads).Warn("number of threads must be positive, using all CPUs")
		cfg.Threads = runtime.NumCPU()
	}

	c, err := params.Lookup(cfg.Class)
	if err != nil {
		return nil, err
	}
	cfg.Class = c.CLASS
	cfg.Params = c
	return &cfg, nil
}
