package xapi

import (
	"context"
	"fmt"
	"time"
)

// DefaultBatchSize is the number of statements per sink call.
const DefaultBatchSize = 500

// Sink persists statements. Each call is atomic.
type Sink interface {
	SaveBulkStatements(ctx context.Context, statements []Statement) error
}

// Query filters stored statements. Zero fields match everything.
type Query struct {
	Actor        string // mailbox, with or without "mailto:"
	VerbID       string
	ActivityID   string
	Registration string
	Since        time.Time
	Until        time.Time
	Limit        int
}

// Source reads statements back.
type Source interface {
	QueryStatements(ctx context.Context, q Query) ([]Statement, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, statements []Statement) error

// SaveBulkStatements calls f.
func (f SinkFunc) SaveBulkStatements(ctx context.Context, statements []Statement) error {
	return f(ctx, statements)
}

// Submit sends statements to sink in sequential batches of batchSize.
// The first failing batch aborts the submission; statements already
// accepted stay accepted. It returns the number of statements accepted.
func Submit(ctx context.Context, sink Sink, statements []Statement, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	total := (len(statements) + batchSize - 1) / batchSize
	sent := 0
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return sent, fmt.Errorf("submit statements: %w", err)
		}
		end := min(sent+batchSize, len(statements))
		if err := sink.SaveBulkStatements(ctx, statements[sent:end]); err != nil {
			return sent, fmt.Errorf("submit batch %d/%d: %w", i+1, total, err)
		}
		sent = end
	}
	return sent, nil
}

// MultiSink fans each batch out to several sinks in order.
type MultiSink []Sink

// SaveBulkStatements writes to each sink, stopping at the first error.
func (m MultiSink) SaveBulkStatements(ctx context.Context, statements []Statement) error {
	for _, s := range m {
		if err := s.SaveBulkStatements(ctx, statements); err != nil {
			return err
		}
	}
	return nil
}
