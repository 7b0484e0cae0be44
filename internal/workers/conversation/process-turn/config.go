// internal/workers/conversation/process-turn/config.go
package processturn

import "time"

type Config struct {
	// MaxHistory bounds the messages kept on a session.
	MaxHistory int
	// PromptHistory is how many recent messages go to the responder.
	PromptHistory int
	// ExplainWhenReady hands the verdict to the responder once every slot is
	// filled. When false the turn ends with the fixed acknowledgment.
	ExplainWhenReady bool
	// LockTimeout bounds the wait for another turn of the same session.
	LockTimeout time.Duration
	// SideEffectTimeout bounds audit writes and outcome publishing.
	SideEffectTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxHistory:        50,
		PromptHistory:     10,
		ExplainWhenReady:  true,
		LockTimeout:       30 * time.Second,
		SideEffectTimeout: 5 * time.Second,
	}
}
