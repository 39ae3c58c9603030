package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceContext, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if m == nil {
		return traceContext{}, false
	}
	return traceContext{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

// resource returns the Cloud Trace resource name for the given project.
func (tc traceContext) resource(projectID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, tc.traceID)
}

// traceFields builds the Cloud Logging correlation fields. Both a project
// and a well-formed traceparent are required.
func traceFields(header, projectID string) []zap.Field {
	if projectID == "" {
		return nil
	}
	tc, ok := parseTraceparent(header)
	if !ok {
		return nil
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", tc.resource(projectID)),
		zap.String("logging.googleapis.com/spanId", tc.spanID),
		zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
	}
}

func loggerWithTrace(base *zap.Logger, header, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := traceFields(header, projectID)
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
