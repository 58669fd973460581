package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/b0bbywan/go-usbwatch/debounce"
	"github.com/b0bbywan/go-usbwatch/logger"
	"github.com/b0bbywan/go-usbwatch/notifications"
)

const (
	AppName    = "usbwatch"
	AppVersion = "0.1"

	Usage = "Usage: usbwatch [-t <interval>]"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	DebounceWindow     time.Duration
	Clock              string
	NotificationConfig *notifications.NotificationConfig
	Log                logger.Config
}

// Load reads defaults, the YAML config file, USBWATCH_* environment variables
// and command-line args, in increasing order of precedence.
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetDefault("DebounceWindow", int(debounce.DefaultWindow/time.Millisecond))
	v.SetDefault("Clock", debounce.ClockMonotonic)
	v.SetDefault("Notifications.Desktop", true)
	v.SetDefault("Notifications.ProblemTimeout", int(notifications.DefaultProblemTimeout/time.Millisecond))
	v.SetDefault("AudioBackend", notifications.BackendNone)
	v.SetDefault("PulseServer", "")
	v.SetDefault("SoundsLocation", filepath.Join("/usr/local/share/", AppName))
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Output", "stderr")

	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.IntP("interval", "t", int(debounce.DefaultWindow/time.Millisecond), "maximum time in milliseconds between resets to consider a fault")
	flags.String("config", "", "path to a config file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrInvalidConfig, flags.Args())
	}
	if err := v.BindPFlag("DebounceWindow", flags.Lookup("interval")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("Log.Level", flags.Lookup("log-level")); err != nil {
		return nil, err
	}

	if configFile, _ := flags.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join("/etc", AppName))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	// USBWATCH_DEBOUNCEWINDOW, USBWATCH_NOTIFICATIONS_DESKTOP, ...
	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// File not found is acceptable, only raise errors for other issues
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: error reading config file: %v", ErrInvalidConfig, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	window, err := millis(v, "DebounceWindow")
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: DebounceWindow must be a positive number of milliseconds, got %s", ErrInvalidConfig, window)
	}

	clock := v.GetString("Clock")
	if _, err := debounce.NewClock(clock); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	problemTimeout, err := millis(v, "Notifications.ProblemTimeout")
	if err != nil {
		return nil, err
	}

	return &Config{
		DebounceWindow: window,
		Clock:          clock,
		NotificationConfig: notifications.NewNotificationConfig(
			AppName,
			v.GetBool("Notifications.Desktop"),
			problemTimeout,
			v.GetString("AudioBackend"),
			v.GetString("PulseServer"),
			v.GetString("SoundsLocation"),
		),
		Log: logger.Config{
			Level:  v.GetString("Log.Level"),
			Output: v.GetString("Log.Output"),
		},
	}, nil
}

func millis(v *viper.Viper, key string) (time.Duration, error) {
	ms, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer number of milliseconds: %v", ErrInvalidConfig, key, err)
	}
	if int64(ms) > math.MaxInt64/int64(time.Millisecond) || int64(ms) < math.MinInt64/int64(time.Millisecond) {
		return 0, fmt.Errorf("%w: %s is out of range: %d", ErrInvalidConfig, key, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
