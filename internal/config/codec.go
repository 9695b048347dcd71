package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CodecConfig controls how notification payloads are written to storage.
// Compression must match whatever was active at write time: there is no
// self-describing marker on stored blobs, so flipping the toggle over a
// populated store requires a bulk re-encode first.
type CodecConfig struct {
	Compress   bool `mapstructure:"compress"`
	Decompress bool `mapstructure:"decompress"`
}

func DefaultCodecConfig() CodecConfig {
	return CodecConfig{
		Compress:   false,
		Decompress: false,
	}
}

// CodecHolder exposes the current codec settings and hot-reloads them when
// the backing file changes.
type CodecHolder struct {
	current atomic.Value // holds CodecConfig
}

func NewCodecHolder() (*CodecHolder, error) {
	v := viper.New()

	v.SetConfigName("codec")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/notifstore")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NOTIFSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCodecConfig()
	v.SetDefault("codec.compress", defaults.Compress)
	v.SetDefault("codec.decompress", defaults.Decompress)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg CodecConfig
	if err := v.UnmarshalKey("codec", &cfg); err != nil {
		return nil, err
	}

	holder := &CodecHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CodecConfig
		if err := v.UnmarshalKey("codec", &updated); err != nil {
			log.Printf("[codec-config] reload failed: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

func (h *CodecHolder) Current() CodecConfig {
	return h.current.Load().(CodecConfig)
}

// Set replaces the active settings. Used by tests and the bulk re-encode path.
func (h *CodecHolder) Set(cfg CodecConfig) {
	h.current.Store(cfg)
}
