package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/policy"
)

// ClassifierOTelMiddleware wraps a classifier with OpenTelemetry tracing
type ClassifierOTelMiddleware struct {
	classifier classify.Classifier
	tracer     *OTelTracer
}

// NewClassifierOTelMiddleware creates a new ClassifierOTelMiddleware
func NewClassifierOTelMiddleware(classifier classify.Classifier, tracer *OTelTracer) *ClassifierOTelMiddleware {
	return &ClassifierOTelMiddleware{
		classifier: classifier,
		tracer:     tracer,
	}
}

// Classify implements classify.Classifier.Classify, recording one span per
// provider round trip. The scanned text itself is never attached to the
// span, only its length.
func (m *ClassifierOTelMiddleware) Classify(ctx context.Context, text string, snapshot policy.Snapshot) (*classify.Classification, error) {
	attributes := map[string]string{
		"text.length":      fmt.Sprintf("%d", len(text)),
		"provider":         m.classifier.Name(),
		"categories.known": fmt.Sprintf("%d", len(snapshot.Categories)),
	}

	ctx, span := m.tracer.StartSpan(ctx, "classify.evaluate", attributes)

	classification, err := m.classifier.Classify(ctx, text, snapshot)
	if err == nil {
		span.SetAttributes(
			attribute.Int("categories.detected", len(classification.Categories)),
			attribute.Int("tokens.total", classification.TokenUsage.TotalTokens),
		)
	}
	m.tracer.EndSpan(span, err)

	return classification, err
}

// Name implements classify.Classifier.Name
func (m *ClassifierOTelMiddleware) Name() string {
	return m.classifier.Name()
}
