package services_test

import (
	"context"
	"testing"

	"crosswalk/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCorrelationID(ctx, "req-123")
	ctx = services.WithContentType(ctx, "movie")

	if rid, ok := services.CorrelationIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected correlation id: %v %v", rid, ok)
	}
	if ct, ok := services.ContentTypeFromContext(ctx); !ok || ct != "movie" {
		t.Fatalf("unexpected content type: %v %v", ct, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCorrelationID(ctx, "")
	ctx = services.WithContentType(ctx, "")

	if _, ok := services.CorrelationIDFromContext(ctx); ok {
		t.Fatal("expected no correlation id")
	}
	if _, ok := services.ContentTypeFromContext(ctx); ok {
		t.Fatal("expected no content type")
	}
}
