package provider

import (
	"context"
	"fmt"
	"io"
)

// Message is one entry in a completion prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the upstream AI capability the gateway fronts: audio in, text
// out; message list in, completion out.
type Client interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Error is a failure reported by the upstream provider. Message carries the
// raw upstream detail for server-side logs; it must never be returned to
// gateway clients.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}
