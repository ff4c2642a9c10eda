// Package pipeline orchestrates retrieval-augmented answers: routing, query
// embedding, similarity search, prompt composition and streamed generation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/metrics"
	"github.com/kailas-cloud/coderag/internal/usecase/prompt"
	"github.com/kailas-cloud/coderag/internal/usecase/router"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 8

// NotReadyMessage answers project questions while the knowledge base is empty
// or unreachable.
const NotReadyMessage = "I don't have access to your project documentation yet. " +
	"Please ingest your project files to enable project-specific assistance."

// Pipeline is safe for concurrent use.
type Pipeline struct {
	embedder  Embedder
	store     VectorStore
	sessions  Sessions
	generator domain.Generator
	chunker   Chunker
	topK      int
	chatTurns int
	logger    *zap.Logger
}

// New creates a pipeline.
func New(
	embedder Embedder, store VectorStore, sessions Sessions,
	generator domain.Generator, chunker Chunker, logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		sessions:  sessions,
		generator: generator,
		chunker:   chunker,
		topK:      DefaultTopK,
		chatTurns: prompt.ChatHistory,
		logger:    logger,
	}
}

// WithTopK sets the default retrieval depth.
func (p *Pipeline) WithTopK(k int) *Pipeline {
	if k > 0 {
		p.topK = k
	}
	return p
}

// WithChatHistory sets how many past messages Chat forwards to the generator.
func (p *Pipeline) WithChatHistory(n int) *Pipeline {
	if n > 0 {
		p.chatTurns = n
	}
	return p
}

// Ask answers message for the code assistant. Small talk goes straight to the
// generator; project questions are answered from retrieved context when the
// knowledge base is ready. The user turn is recorded before routing; the
// assistant turn only after the consumer drains the whole stream. Failures
// surface as a single final fragment.
func (p *Pipeline) Ask(ctx context.Context, sessionID, message string, topK int) iter.Seq[string] {
	return func(yield func(string) bool) {
		history := p.sessions.History(sessionID)
		p.sessions.Append(sessionID, conversation.RoleUser, message)

		if !router.NeedsProjectContext(message) {
			metrics.RouteDecisionsTotal.WithLabelValues(string(router.RouteGeneral)).Inc()
			msgs := prompt.GeneralMessages(history, message, prompt.SmallTalkHistory)
			p.generate(ctx, sessionID, msgs, "general", time.Now(), yield)
			return
		}

		if !p.Status(ctx).IsReady {
			metrics.RouteDecisionsTotal.WithLabelValues("not_ready").Inc()
			yield(NotReadyMessage)
			return
		}
		metrics.RouteDecisionsTotal.WithLabelValues(string(router.RouteProject)).Inc()

		if topK <= 0 {
			topK = p.topK
		}
		start := time.Now()
		task, msgs, err := p.compose(ctx, sessionID, message, history, topK)
		if err != nil {
			p.logger.Error("RAG pipeline failed", zap.String("session_id", sessionID), zap.Error(err))
			yield("Error in RAG pipeline: " + err.Error())
			return
		}
		p.generate(ctx, sessionID, msgs, string(task), start, yield)
	}
}

// Chat is plain conversation with the most recent history.
func (p *Pipeline) Chat(ctx context.Context, sessionID, message string) iter.Seq[string] {
	return func(yield func(string) bool) {
		history := p.sessions.History(sessionID)
		p.sessions.Append(sessionID, conversation.RoleUser, message)
		msgs := prompt.ChatMessages(history, message, p.chatTurns)
		p.generate(ctx, sessionID, msgs, "chat", time.Now(), yield)
	}
}

func (p *Pipeline) compose(
	ctx context.Context, sessionID, query string, history []conversation.Message, topK int,
) (prompt.TaskType, []conversation.Message, error) {
	results, err := p.Search(ctx, query, topK)
	if err != nil {
		return "", nil, err
	}

	task := prompt.DetectTask(query)
	text := prompt.Compose(task, prompt.FormatContext(results), query, history)

	p.logger.Info("Context retrieved",
		zap.String("session_id", sessionID),
		zap.String("task", string(task)),
		zap.Int("chunks", len(results)),
		zap.String("embedding_provider", p.embedder.Provider()))

	return task, []conversation.Message{{Role: conversation.RoleUser, Content: text}}, nil
}

// Search embeds query and returns the topK nearest chunks.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]result.Result, error) {
	if topK <= 0 {
		topK = p.topK
	}
	emb, err := p.embedder.Embed(ctx, query)
	if err != nil {
		metrics.GenerationErrorsTotal.WithLabelValues("embed").Inc()
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := p.store.Query(ctx, emb.Embedding, topK, filter.Expression{})
	if err != nil {
		metrics.GenerationErrorsTotal.WithLabelValues("search").Inc()
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// Explain returns the full-history RAG prompt that would answer query,
// without calling the generator.
func (p *Pipeline) Explain(ctx context.Context, sessionID, query string, topK int) (string, error) {
	results, err := p.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	var history []conversation.Message
	if sessionID != "" {
		history = p.sessions.History(sessionID)
	}
	return prompt.BuildRAG(prompt.CodeAssistantSystem, prompt.FormatContext(results), query, history), nil
}

// generate streams the generator's answer to yield and records it as the
// assistant turn once the stream ends and every fragment was accepted.
func (p *Pipeline) generate(
	ctx context.Context, sessionID string, msgs []conversation.Message,
	task string, start time.Time, yield func(string) bool,
) {
	stream, err := p.generator.Stream(ctx, msgs)
	if err != nil {
		metrics.GenerationErrorsTotal.WithLabelValues("generate").Inc()
		p.logger.Error("Generation failed", zap.String("session_id", sessionID), zap.Error(err))
		yield("Error: " + err.Error())
		return
	}
	defer func() {
		if err := stream.Close(); err != nil {
			p.logger.Debug("Close token stream", zap.Error(err))
		}
	}()

	var answer strings.Builder
	first := true
	for {
		tok, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.GenerationErrorsTotal.WithLabelValues("generate").Inc()
			p.logger.Error("Generation stream failed", zap.String("session_id", sessionID), zap.Error(err))
			yield("Error: " + err.Error())
			return
		}
		if first {
			metrics.RetrievalDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
			first = false
		}
		answer.WriteString(tok)
		if !yield(tok) {
			p.logger.Debug("Stream abandoned", zap.String("session_id", sessionID))
			return
		}
	}

	p.sessions.Append(sessionID, conversation.RoleAssistant, answer.String())
}
