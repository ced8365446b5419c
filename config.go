package redlock

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the file representation of LockOptions. Zero values keep the
// defaults of the selected variant.
//
//	locks:
//	  orders:
//	    variant: redisson
//	    ttl: 30s
//	    retry_times: 20
//	    backoff_low: 50ms
//	    backoff_high: 200ms
type Config struct {
	Variant         string        `mapstructure:"variant"`
	TTL             time.Duration `mapstructure:"ttl"`
	RetryTimes      int           `mapstructure:"retry_times"`
	BackoffLow      time.Duration `mapstructure:"backoff_low"`
	BackoffHigh     time.Duration `mapstructure:"backoff_high"`
	Renewal         *bool         `mapstructure:"renewal"`
	RenewalInterval time.Duration `mapstructure:"renewal_interval"`
}

// Options converts the config to lock options.
func (c Config) Options() []Option {
	var opts []Option
	if c.Variant != "" {
		opts = append(opts, WithVariant(Variant(c.Variant)))
	}
	if c.TTL != 0 {
		opts = append(opts, WithTTL(c.TTL))
	}
	if c.RetryTimes != 0 {
		opts = append(opts, WithRetryTimes(c.RetryTimes))
	}
	if c.BackoffLow != 0 || c.BackoffHigh != 0 {
		low, high := c.BackoffLow, c.BackoffHigh
		if low == 0 {
			low = defaultBackoffLow
		}
		if high == 0 {
			high = defaultBackoffHigh
		}
		opts = append(opts, WithBackoff(low, high))
	}
	if c.Renewal != nil {
		opts = append(opts, WithRenewal(*c.Renewal))
	}
	if c.RenewalInterval != 0 {
		opts = append(opts, WithRenewalInterval(c.RenewalInterval))
	}
	return opts
}

// LoadOptions reads the lock section at key from v and returns the options
// it describes. The resulting options are validated.
func LoadOptions(v *viper.Viper, key string) ([]Option, error) {
	var cfg Config
	if err := v.UnmarshalKey(key, &cfg); err != nil {
		return nil, fmt.Errorf("redlock: failed to unmarshal config key %s: %w", key, err)
	}

	opts := cfg.Options()
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("redlock: config key %s: %w", key, err)
	}
	return opts, nil
}
