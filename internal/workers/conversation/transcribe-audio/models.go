// internal/workers/conversation/transcribe-audio/models.go
package transcribeaudio

type Transcription struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Segments   int     `json:"segments"`
	Attempts   int     `json:"attempts"`
}

// whisperResponse is the verbose_json body of a Whisper-compatible server.
type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		NoSpeechProb *float64 `json:"no_speech_prob"`
	} `json:"segments"`
}
