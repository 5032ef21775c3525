package threadpool

import (
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMinWorkers         = 2
	defaultMaxWorkers         = 32
	defaultIdleTimeout        = 60 * time.Second
	defaultQueueCapacity      = 1000
	defaultScalingFactor      = 1.5
	defaultScaleDownThreshold = 0.3

	envPrefix = "THREAD_POOL"
)

// Config holds the pool tunables. A Config is read once at construction and
// never mutated by the pool afterwards.
type Config struct {
	MinWorkers         int           `json:"min_workers"`
	MaxWorkers         int           `json:"max_workers"`
	IdleTimeout        time.Duration `json:"idle_timeout"`
	QueueCapacity      int           `json:"queue_capacity"`
	MonitoringEnabled  bool          `json:"monitoring_enabled"`
	ScalingFactor      float64       `json:"scaling_factor"`
	ScaleDownThreshold float64       `json:"scale_down_threshold"`
}

// DefaultConfig returns the documented default tunables.
func DefaultConfig() Config {
	return Config{
		MinWorkers:         defaultMinWorkers,
		MaxWorkers:         defaultMaxWorkers,
		IdleTimeout:        defaultIdleTimeout,
		QueueCapacity:      defaultQueueCapacity,
		MonitoringEnabled:  true,
		ScalingFactor:      defaultScalingFactor,
		ScaleDownThreshold: defaultScaleDownThreshold,
	}
}

// ConfigFromEnv loads tunables from THREAD_POOL_* environment variables
// (THREAD_POOL_MIN_WORKERS, THREAD_POOL_MAX_WORKERS, THREAD_POOL_IDLE_TIMEOUT,
// THREAD_POOL_QUEUE_SIZE, THREAD_POOL_MONITORING, THREAD_POOL_SCALING_FACTOR,
// THREAD_POOL_SCALE_DOWN_THRESHOLD). Missing or unparseable values fall back
// to the defaults; ConfigFromEnv never fails.
func ConfigFromEnv() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("min_workers", defaultMinWorkers)
	v.SetDefault("max_workers", defaultMaxWorkers)
	v.SetDefault("idle_timeout", int(defaultIdleTimeout/time.Second))
	v.SetDefault("queue_size", defaultQueueCapacity)
	v.SetDefault("monitoring", true)
	v.SetDefault("scaling_factor", defaultScalingFactor)
	v.SetDefault("scale_down_threshold", defaultScaleDownThreshold)

	conf := Config{
		MinWorkers:         v.GetInt("min_workers"),
		MaxWorkers:         v.GetInt("max_workers"),
		IdleTimeout:        time.Duration(v.GetInt("idle_timeout")) * time.Second,
		QueueCapacity:      v.GetInt("queue_size"),
		MonitoringEnabled:  parseBool(v.GetString("monitoring"), true),
		ScalingFactor:      v.GetFloat64("scaling_factor"),
		ScaleDownThreshold: v.GetFloat64("scale_down_threshold"),
	}
	validateConfig(&conf)
	return conf
}

// validateConfig replaces out-of-range values with the defaults. Unparseable
// environment values arrive here as zero values, so they land on the
// defaults too.
func validateConfig(conf *Config) {
	if conf.MinWorkers < 1 {
		conf.MinWorkers = defaultMinWorkers
	}
	if conf.MaxWorkers < 1 {
		conf.MaxWorkers = defaultMaxWorkers
	}
	if conf.MaxWorkers < conf.MinWorkers {
		conf.MaxWorkers = conf.MinWorkers
	}
	if conf.IdleTimeout <= 0 {
		conf.IdleTimeout = defaultIdleTimeout
	}
	if conf.QueueCapacity < 1 {
		conf.QueueCapacity = defaultQueueCapacity
	}
	if conf.ScalingFactor <= 1.0 {
		conf.ScalingFactor = defaultScalingFactor
	}
	if conf.ScaleDownThreshold <= 0 || conf.ScaleDownThreshold >= 1 {
		conf.ScaleDownThreshold = defaultScaleDownThreshold
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
