package chat

import "context"

// AudioPlaybackSink is where synthesized speech goes. Implementations must
// discard any clip still playing when a new one arrives.
type AudioPlaybackSink interface {
	Play(data []byte, contentType string) error
	Stop()
}

// SpeechInputSource is a dictation capability, implemented by a platform
// binding such as microphone capture. It emits final transcript lines on the
// returned channel; the channel closes on Stop or cancellation. The
// Controller consumes one via Dictate.
type SpeechInputSource interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop()
}
