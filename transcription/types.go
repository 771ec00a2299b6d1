package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language of the audio (e.g. "en"). Empty
	// lets the producer detect it.
	Language string `json:"language,omitempty"`
	// Model overrides the configured model.
	Model string `json:"model,omitempty"`
}
