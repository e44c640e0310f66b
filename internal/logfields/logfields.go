package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRequestID  = "request_id"
	KeyField      = "field"
	KeyToken      = "token"
	KeyOutcome    = "outcome"
	KeyStage      = "stage"
	KeyTemplate   = "template"
	KeyCourseCode = "course_code"
	KeyUnits      = "units"
	KeyBytes      = "bytes"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RequestID(id string) slog.Attr     { return slog.String(KeyRequestID, id) }
func Field(name string) slog.Attr       { return slog.String(KeyField, name) }
func Token(tok string) slog.Attr        { return slog.String(KeyToken, tok) }
func Outcome(o string) slog.Attr        { return slog.String(KeyOutcome, o) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func Template(path string) slog.Attr    { return slog.String(KeyTemplate, path) }
func CourseCode(code string) slog.Attr  { return slog.String(KeyCourseCode, code) }
func Units(n int) slog.Attr             { return slog.Int(KeyUnits, n) }
func Bytes(n int) slog.Attr             { return slog.Int(KeyBytes, n) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr  { return slog.String(KeyRemoteAddr, addr) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
