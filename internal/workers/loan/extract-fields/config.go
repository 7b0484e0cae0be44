// internal/workers/loan/extract-fields/config.go
package extractfields

import "time"

type Config struct {
	Timeout     time.Duration
	MaxTextSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		MaxTextSize: 4096,
	}
}
