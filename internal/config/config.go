// Package config layers defaults, an optional YAML file, RESIZER_*
// environment variables and command-line flags into one Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"resizer/internal/archive"
	"resizer/internal/codec"
	"resizer/internal/errs"
	"resizer/internal/logging"
	"resizer/internal/processor"
)

// EnvPrefix namespaces environment overrides, e.g. RESIZER_WIDTH.
const EnvPrefix = "RESIZER"

// Config is everything a resize run needs.
type Config struct {
	Resize        processor.ResizeOptions `mapstructure:",squash"`
	Workers       int                     `mapstructure:"workers"`
	FailFast      bool                    `mapstructure:"fail-fast"`
	Output        string                  `mapstructure:"output" default:"resized"`
	Archive       string                  `mapstructure:"archive"`
	ArchiveFormat string                  `mapstructure:"archive-format" default:"zip"`
	Manifest      string                  `mapstructure:"manifest"`
	Quiet         bool                    `mapstructure:"quiet"`
	Log           logging.Config          `mapstructure:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	return cfg
}

// RegisterGlobalFlags adds the flags shared by every command.
func RegisterGlobalFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("config", "", "YAML config file")
	fs.String("log-level", def.Log.Level, "log level (debug, info, warn, error)")
	fs.String("log-format", def.Log.Format, "log encoding on stderr (console, json)")
	fs.String("log-file", "", "also write JSON logs to this file, rotated by size")
}

// RegisterResizeFlags adds the resize command's flags.
func RegisterResizeFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.IntP("width", "W", def.Resize.Width, "target width in pixels")
	fs.IntP("height", "H", def.Resize.Height, "target height in pixels")
	fs.StringP("format", "f", string(def.Resize.Format), "output format ("+strings.Join(codec.FormatNames(), ", ")+")")
	fs.IntP("quality", "q", def.Resize.Quality, "jpeg quality (10-100)")
	fs.Bool("keep-aspect", def.Resize.MaintainAspectRatio, "fit inside the target box keeping the aspect ratio")
	fs.Int("workers", def.Workers, "concurrent workers (0 = one per CPU)")
	fs.Bool("fail-fast", def.FailFast, "stop dispatching after the first failed image")
	fs.StringP("output", "o", def.Output, "directory for resized files (empty to skip)")
	fs.StringP("archive", "a", "", "also pack results into this archive file or directory")
	fs.String("archive-format", def.ArchiveFormat, "archive container (zip, tar.zst, tar.lz4)")
	fs.String("manifest", "", "write a JSON manifest to this file")
	fs.Bool("quiet", false, "disable the progress display")
}

// Load reads the optional file at path and overlays the environment and any
// flags that were set explicitly.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errs.New(errs.KindConfiguration, "read config", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, errs.New(errs.KindConfiguration, "bind flags", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.New(errs.KindConfiguration, "decode config", err)
	}

	format, err := codec.ParseFormat(string(cfg.Resize.Format))
	if err != nil {
		return Config{}, err
	}
	cfg.Resize.Format = format

	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("width", def.Resize.Width)
	v.SetDefault("height", def.Resize.Height)
	v.SetDefault("format", string(def.Resize.Format))
	v.SetDefault("quality", def.Resize.Quality)
	v.SetDefault("keep-aspect", def.Resize.MaintainAspectRatio)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("fail-fast", def.FailFast)
	v.SetDefault("output", def.Output)
	v.SetDefault("archive", def.Archive)
	v.SetDefault("archive-format", def.ArchiveFormat)
	v.SetDefault("manifest", def.Manifest)
	v.SetDefault("quiet", def.Quiet)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max-size", def.Log.MaxSizeMB)
	v.SetDefault("log.max-backups", def.Log.MaxBackups)
	v.SetDefault("log.max-age", def.Log.MaxAgeDays)
}

// logFlags maps global flag names onto their nested keys.
var logFlags = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" || f.Name == "help" {
			return
		}
		key := f.Name
		if nested, ok := logFlags[f.Name]; ok {
			key = nested
		}
		bindErr = v.BindPFlag(key, f)
	})
	return bindErr
}

// Validate checks the settings that processor.Run does not.
func (c Config) Validate() error {
	if err := c.Resize.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errs.Configuration("validate config", "workers must not be negative (got %d)", c.Workers)
	}
	if _, err := archive.ParseFormat(c.ArchiveFormat); err != nil {
		return errs.New(errs.KindConfiguration, "validate config", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errs.New(errs.KindConfiguration, "validate config", err)
	}
	return nil
}

// Policy maps FailFast onto a processor policy.
func (c Config) Policy() processor.FailurePolicy {
	if c.FailFast {
		return processor.PolicyFailFast
	}
	return processor.PolicyIsolate
}

// ArchivePath resolves where the archive goes. An existing directory or a
// trailing separator gets the default archive name appended.
func (c Config) ArchivePath() (string, archive.Format, error) {
	format, err := archive.ParseFormat(c.ArchiveFormat)
	if err != nil {
		return "", "", errs.New(errs.KindConfiguration, "archive path", err)
	}
	if c.Archive == "" {
		return "", format, nil
	}
	if strings.HasSuffix(c.Archive, string(os.PathSeparator)) || strings.HasSuffix(c.Archive, "/") {
		return filepath.Join(c.Archive, archive.DefaultName(format)), format, nil
	}
	if info, err := os.Stat(c.Archive); err == nil && info.IsDir() {
		return filepath.Join(c.Archive, archive.DefaultName(format)), format, nil
	}
	return c.Archive, format, nil
}

func (c Config) String() string {
	r := c.Resize
	return fmt.Sprintf("%dx%d %s q%d keep-aspect=%t workers=%d policy=%s",
		r.Width, r.Height, r.Format, r.Quality, r.MaintainAspectRatio, c.Workers, c.Policy())
}
