package types

// Voice is a saved text-to-speech configuration. The token is the
// caller-held provider secret; the studio never stores a server copy.
type Voice struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Token   string `json:"token"`
	VoiceID string `json:"voiceId"`
}
