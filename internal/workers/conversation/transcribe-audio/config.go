// internal/workers/conversation/transcribe-audio/config.go
package transcribeaudio

import "time"

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Model:       "base",
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		Backoff:     1 * time.Second,
	}
}
