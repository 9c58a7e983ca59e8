package logging

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var (
	projectIDOnce   sync.Once
	cachedProjectID string
)

// traceParent is the parsed form of a traceparent header.
type traceParent struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceParent(header string) (traceParent, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if m == nil {
		return traceParent{}, false
	}
	return traceParent{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

// resource is the Cloud Logging trace resource name for the given project.
func (tp traceParent) resource(projectID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, tp.traceID)
}

func (tp traceParent) fields(projectID string) []zap.Field {
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", tp.resource(projectID)),
		zap.String("logging.googleapis.com/spanId", tp.spanID),
		zap.Bool("logging.googleapis.com/trace_sampled", tp.sampled),
	}
}

// requestFields builds the per-request logger fields. Trace fields are only
// emitted when a project ID is known, since Cloud Logging needs it to link
// the entry to the trace.
func requestFields(header, projectID, requestID string) []zap.Field {
	var fields []zap.Field
	if projectID != "" {
		if tp, ok := parseTraceParent(header); ok {
			fields = tp.fields(projectID)
		}
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	return fields
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT", "PROJECT_ID"} {
			if v := os.Getenv(key); v != "" {
				cachedProjectID = v
				return
			}
		}
	})
	return cachedProjectID
}
