package domain

import "strings"

type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeNoInput  Outcome = "no_input"
)

const (
	NoInputSpeechText = "No input provided"
	NoInputResponse   = "Please provide text or voice input."
)

// UserTurn holds the three optional input channels of one submission.
// An empty string means the channel was not supplied.
type UserTurn struct {
	ID        string
	AudioPath string
	Text      string
	ImagePath string
}

func (t UserTurn) HasAudio() bool {
	return t.AudioPath != ""
}

func (t UserTurn) HasImage() bool {
	return t.ImagePath != ""
}

// TypedText returns the trimmed text channel.
func (t UserTurn) TypedText() string {
	return strings.TrimSpace(t.Text)
}

type EncodedImage struct {
	Data      string
	MediaType string
}

func (e EncodedImage) DataURL() string {
	return "data:" + e.MediaType + ";base64," + e.Data
}

type VoiceArtifact struct {
	TurnID       string
	PrimaryPath  string
	PlaybackPath string
}

type Result struct {
	TurnID     string
	Outcome    Outcome
	SpeechText string
	Response   string
	Artifact   *VoiceArtifact
}

func NoInputResult(turnID string) *Result {
	return &Result{
		TurnID:     turnID,
		Outcome:    OutcomeNoInput,
		SpeechText: NoInputSpeechText,
		Response:   NoInputResponse,
	}
}
