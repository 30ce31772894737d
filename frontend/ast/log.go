package ast

import (
	"context"
	"log/slog"
)

// Slog wraps a Node as a slog.LogValuer to not render node text
// unless it definitely needs to be logged
func Slog(n *Node) slog.LogValuer {
	return nodeLogValuer{n}
}

type nodeLogValuer struct{ *Node }

func (l nodeLogValuer) LogValue() slog.Value {
	if l.Node == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("kind", l.kind.String()),
		slog.Int("id", int(l.id)),
		slog.String("text", Print(l.store, l.id)),
	)
}

// NodeHandler is a slog.Handler capable of lazy-printing syntax trees
func NodeHandler(underlying slog.Handler) slog.Handler {
	return &nodeLogHandler{underlying: underlying}
}

func NodeLogger(underlying *slog.Logger) *slog.Logger {
	return slog.New(NodeHandler(underlying.Handler()))
}

type nodeLogHandler struct {
	underlying slog.Handler
}

func (l *nodeLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *nodeLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	// for each attr, add it wrapped in Slog if it is an Any and then a Node
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Value.Kind() == slog.KindAny {
			if asNode, isNode := attr.Value.Any().(*Node); isNode {
				newRecord.Add(attr.Key, Slog(asNode))
				return true
			}
		}
		newRecord.Add(attr)
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *nodeLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// replace attrs with Slog attrs if they are Nodes
	for i, attr := range attrs {
		if attr.Value.Kind() == slog.KindAny {
			if asNode, isNode := attr.Value.Any().(*Node); isNode {
				attr.Value = slog.AnyValue(Slog(asNode))
				attrs[i] = attr
			}
		}
	}
	return NodeHandler(l.underlying.WithAttrs(attrs))
}

func (l *nodeLogHandler) WithGroup(name string) slog.Handler {
	return NodeHandler(l.underlying.WithGroup(name))
}
