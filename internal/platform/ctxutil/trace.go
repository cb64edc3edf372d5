package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies one HTTP request across logs and spans.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

// LogFields returns the request identifiers and caller carried by ctx as
// logger key/value pairs.
func LogFields(ctx context.Context) []interface{} {
	var out []interface{}
	if td := GetTraceData(ctx); td != nil {
		out = append(out, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if s := GetSession(ctx); s.Valid() {
		out = append(out, "user_id", s.UserID.String())
	}
	return out
}
