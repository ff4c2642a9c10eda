package domain

import (
	"context"

	"github.com/kailas-cloud/coderag/internal/domain/conversation"
)

// Generator produces a streamed completion for an ordered list of messages.
// Each call starts a fresh stream; a stream cannot be resumed.
type Generator interface {
	Stream(ctx context.Context, messages []conversation.Message) (TokenStream, error)
}

// TokenStream yields text fragments until io.EOF.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}
