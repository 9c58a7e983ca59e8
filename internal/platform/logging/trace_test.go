package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

const (
	sampledHeader   = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"
	unsampledHeader = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00"
)

func TestParseTraceParent(t *testing.T) {
	tp, ok := parseTraceParent(sampledHeader)
	if !ok {
		t.Fatal("expected header to parse")
	}
	if tp.traceID != "3d23d071b5bfd6579171efce907685cb" || tp.spanID != "08f067aa0ba902b7" || !tp.sampled {
		t.Fatalf("unexpected parse result: %+v", tp)
	}

	tp, ok = parseTraceParent(unsampledHeader)
	if !ok || tp.sampled {
		t.Fatalf("expected unsampled trace, got %+v", tp)
	}

	for _, header := range []string{"", "invalid", "trace/span;o=1", "00-short-08f067aa0ba902b7-01"} {
		if _, ok := parseTraceParent(header); ok {
			t.Fatalf("expected %q to be rejected", header)
		}
	}
}

func TestRequestFieldsWithProject(t *testing.T) {
	fields := requestFields(sampledHeader, "test-project", "req-1")

	wantTrace := "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb"
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}
	if fields[0].Key != "logging.googleapis.com/trace" || fields[0].String != wantTrace {
		t.Fatalf("unexpected trace field: %+v", fields[0])
	}
	if fields[1].Key != "logging.googleapis.com/spanId" || fields[1].String != "08f067aa0ba902b7" {
		t.Fatalf("unexpected span field: %+v", fields[1])
	}
	if fields[2].Type != zapcore.BoolType || fields[2].Integer != 1 {
		t.Fatalf("unexpected sampled field: %+v", fields[2])
	}
	if fields[3].Key != "requestId" || fields[3].String != "req-1" {
		t.Fatalf("unexpected request ID field: %+v", fields[3])
	}
}

func TestRequestFieldsWithoutProjectOmitsTrace(t *testing.T) {
	fields := requestFields(sampledHeader, "", "req-2")
	if len(fields) != 1 || fields[0].Key != "requestId" {
		t.Fatalf("expected only requestId field, got %+v", fields)
	}
}

func TestRequestFieldsEmpty(t *testing.T) {
	if fields := requestFields("garbage", "test-project", ""); fields != nil {
		t.Fatalf("expected no fields, got %+v", fields)
	}
}
