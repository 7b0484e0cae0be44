// internal/workers/conversation/generate-response/config.go
package generateresponse

import "time"

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Timeout      time.Duration
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxTokens    int
	Temperature  float64
	// HistoryTurns is how many recent messages a clarification prompt quotes.
	HistoryTurns int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      60 * time.Second,
		MaxAttempts:  2,
		BaseDelay:    100 * time.Millisecond,
		MaxTokens:    512,
		Temperature:  0.7,
		HistoryTurns: 6,
	}
}
