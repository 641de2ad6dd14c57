package chat

import "sync"

// ClipBuffer is an AudioPlaybackSink that holds the most recent clip for a
// frontend to fetch. Playing a new clip releases the previous one.
type ClipBuffer struct {
	mu          sync.Mutex
	data        []byte
	contentType string
}

// NewClipBuffer returns an empty buffer.
func NewClipBuffer() *ClipBuffer {
	return &ClipBuffer{}
}

// Play replaces the buffered clip.
func (b *ClipBuffer) Play(data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
	b.contentType = contentType
	return nil
}

// Stop releases the buffered clip.
func (b *ClipBuffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	b.contentType = ""
}

// Current returns the buffered clip, if any.
func (b *ClipBuffer) Current() ([]byte, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, "", false
	}
	return append([]byte(nil), b.data...), b.contentType, true
}
