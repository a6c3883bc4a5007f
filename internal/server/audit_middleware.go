package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   getHandlerName(r.URL.Path, r.Method),
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.UserID = username
		}

		entry.ReturnID, entry.Action = parseReturnAction(r.URL.Path)

		var requestBody []byte
		if r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)
		}

		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

// parseReturnAction pulls the return id and workflow action out of paths
// like /returns/{id}/approve. Fixed segments (stats, export, refund) are
// not return ids.
func parseReturnAction(path string) (returnID, action string) {
	trimmed := strings.Trim(strings.TrimPrefix(path, "/returns"), "/")
	if trimmed == "" {
		return "", ""
	}

	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "stats", "export", "refund":
		return "", parts[0]
	}

	returnID = parts[0]
	if len(parts) > 1 {
		action = parts[1]
	}
	return returnID, action
}

func getHandlerName(path string, method string) string {
	if !strings.HasPrefix(path, "/returns") {
		return "unknown"
	}

	switch {
	case strings.HasSuffix(path, "/stats"):
		return "handleStats"
	case strings.HasSuffix(path, "/export"):
		return "handleExport"
	case strings.HasSuffix(path, "/refund"):
		return "handleIssueRefund"
	case strings.HasSuffix(path, "/history"):
		return "handleHistory"
	case strings.HasSuffix(path, "/approve"):
		return "handleApprove"
	case strings.HasSuffix(path, "/reject"):
		return "handleReject"
	case strings.HasSuffix(path, "/receive"):
		return "handleReceive"
	case strings.HasSuffix(path, "/cancel"):
		return "handleCancel"
	case strings.HasSuffix(path, "/inspect"):
		return "handleInspect"
	case strings.HasSuffix(path, "/complete"):
		return "handleComplete"
	case method == http.MethodPost:
		return "handleSubmitReturn"
	case method == http.MethodGet && path == "/returns":
		return "handleListReturns"
	case method == http.MethodGet:
		return "handleGetReturn"
	}

	return "unknown"
}
