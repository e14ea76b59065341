package graph

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/medichat/log"
)

// TraceEvent represents different types of events in graph execution
type TraceEvent string

const (
	// TraceEventGraphStart indicates the start of graph execution
	TraceEventGraphStart TraceEvent = "graph_start"

	// TraceEventGraphEnd indicates the end of graph execution
	TraceEventGraphEnd TraceEvent = "graph_end"

	// TraceEventNodeStart indicates the start of node execution
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd indicates the end of node execution
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError indicates an error occurred in node execution
	TraceEventNodeError TraceEvent = "node_error"

	// TraceEventEdgeTraversal indicates traversal from one node to another
	TraceEventEdgeTraversal TraceEvent = "edge_traversal"
)

// TraceSpan represents a span of execution with timing and metadata
type TraceSpan struct {
	// ID is a unique identifier for this span
	ID string

	// ParentID is the ID of the parent span (empty for root spans)
	ParentID string

	Event    TraceEvent
	NodeName string

	// FromNode and ToNode are set for edge traversals
	FromNode string
	ToNode   string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Error error
}

// TraceHook defines the interface for trace event handlers
type TraceHook interface {
	// OnEvent is called when a trace event occurs
	OnEvent(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc is a function adapter for TraceHook
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnEvent implements the TraceHook interface
func (f TraceHookFunc) OnEvent(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer fans span events out to hooks. Hooks are fixed at construction, so
// a single Tracer may serve concurrent invocations; hooks must be safe for
// concurrent use.
type Tracer struct {
	hooks []TraceHook
}

// NewTracer creates a new tracer instance
func NewTracer(hooks ...TraceHook) *Tracer {
	return &Tracer{hooks: hooks}
}

// StartSpan creates a new trace span
func (t *Tracer) StartSpan(ctx context.Context, event TraceEvent, nodeName string) *TraceSpan {
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     event,
		NodeName:  nodeName,
		StartTime: time.Now(),
	}

	if parentSpan := SpanFromContext(ctx); parentSpan != nil {
		span.ParentID = parentSpan.ID
	}

	t.notify(ctx, span)
	return span
}

// EndSpan completes a trace span
func (t *Tracer) EndSpan(ctx context.Context, span *TraceSpan, err error) {
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.Error = err

	switch {
	case err != nil && span.Event == TraceEventNodeStart:
		span.Event = TraceEventNodeError
	case span.Event == TraceEventNodeStart:
		span.Event = TraceEventNodeEnd
	case span.Event == TraceEventGraphStart:
		span.Event = TraceEventGraphEnd
	}

	t.notify(ctx, span)
}

// TraceEdgeTraversal records an edge traversal event
func (t *Tracer) TraceEdgeTraversal(ctx context.Context, fromNode, toNode string) {
	now := time.Now()
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     TraceEventEdgeTraversal,
		FromNode:  fromNode,
		ToNode:    toNode,
		StartTime: now,
		EndTime:   now,
	}

	if parentSpan := SpanFromContext(ctx); parentSpan != nil {
		span.ParentID = parentSpan.ID
	}

	t.notify(ctx, span)
}

func (t *Tracer) notify(ctx context.Context, span *TraceSpan) {
	for _, hook := range t.hooks {
		hook.OnEvent(ctx, span)
	}
}

type contextKey string

const spanContextKey contextKey = "medichat_span"

// ContextWithSpan returns a new context with the span stored
func ContextWithSpan(ctx context.Context, span *TraceSpan) context.Context {
	return context.WithValue(ctx, spanContextKey, span)
}

// SpanFromContext extracts a span from context
func SpanFromContext(ctx context.Context) *TraceSpan {
	if span, ok := ctx.Value(spanContextKey).(*TraceSpan); ok {
		return span
	}
	return nil
}

// LoggingHook writes finished node and graph spans to logger at debug level
// and node errors at warn level.
func LoggingHook(logger log.Logger) TraceHook {
	logger = log.OrDefault(logger)
	return TraceHookFunc(func(ctx context.Context, span *TraceSpan) {
		switch span.Event {
		case TraceEventNodeEnd:
			logger.Debug("node %s finished in %s", span.NodeName, span.Duration)
		case TraceEventNodeError:
			logger.Warn("node %s failed after %s: %v", span.NodeName, span.Duration, span.Error)
		case TraceEventGraphEnd:
			logger.Debug("graph finished in %s", span.Duration)
		}
	})
}
