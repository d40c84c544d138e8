package auditlog

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/trovehq/trovehub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newLogTestLogger builds a Logger that writes only to zap so tests do not
// need a MongoDB connection. The observer captures emitted entries.
func newLogTestLogger(cfg Config) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return New(nil, zap.New(core), cfg), logs
}

func TestLogger_NilIsNoOp(t *testing.T) {
	var l *Logger
	// Must not panic.
	l.Log(context.Background(), audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
	})
}

func TestLogger_OffDisablesCategory(t *testing.T) {
	l, logs := newLogTestLogger(Config{Auth: "off", Application: "log", Admin: "log"})

	l.Log(context.Background(), audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Success:   true,
	})
	if logs.Len() != 0 {
		t.Errorf("expected no entries for disabled category, got %d", logs.Len())
	}

	l.Log(context.Background(), audit.Event{
		Category:  audit.CategoryApplication,
		EventType: audit.EventApplicationSubmitted,
		Success:   true,
	})
	if logs.Len() != 1 {
		t.Errorf("expected 1 entry for enabled category, got %d", logs.Len())
	}
}

func TestLogger_LogOnlySkipsStore(t *testing.T) {
	// A nil store with a "log" setting must not be touched.
	l, logs := newLogTestLogger(Config{Admin: "log"})

	l.Log(context.Background(), audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventReviewStarted,
		Success:   true,
	})
	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
}

func TestLogger_SuccessLogsAtInfo(t *testing.T) {
	l, logs := newLogTestLogger(Config{Auth: "log"})

	userID := primitive.NewObjectID()
	r := httptest.NewRequest("POST", "/api/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	l.LoginSuccess(context.Background(), r, userID, nil, "password", "pat@northfield.edu")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zap.InfoLevel {
		t.Errorf("level = %v, want info", entry.Level)
	}

	fields := entry.ContextMap()
	if fields["event_type"] != audit.EventLoginSuccess {
		t.Errorf("event_type = %v", fields["event_type"])
	}
	if fields["ip"] != "203.0.113.9" {
		t.Errorf("ip = %v, want X-Forwarded-For value", fields["ip"])
	}
	if fields["user_id"] != userID.Hex() {
		t.Errorf("user_id = %v", fields["user_id"])
	}
	if fields["detail_auth_method"] != "password" {
		t.Errorf("detail_auth_method = %v", fields["detail_auth_method"])
	}
}

func TestLogger_FailureLogsAtWarn(t *testing.T) {
	l, logs := newLogTestLogger(Config{Auth: "log"})

	r := httptest.NewRequest("POST", "/api/login", nil)
	l.LoginFailedUserNotFound(context.Background(), r, "nobody@example.com")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zap.WarnLevel {
		t.Errorf("level = %v, want warn", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["failure_reason"] != "user not found" {
		t.Errorf("failure_reason = %v", fields["failure_reason"])
	}
	if fields["detail_attempted_email"] != "nobody@example.com" {
		t.Errorf("detail_attempted_email = %v", fields["detail_attempted_email"])
	}
}

func TestLogger_ReviewDecisionEvents(t *testing.T) {
	l, logs := newLogTestLogger(Config{Admin: "log"})

	actorID := primitive.NewObjectID()
	applicantID := primitive.NewObjectID()
	instID := primitive.NewObjectID()
	appID := primitive.NewObjectID()
	r := httptest.NewRequest("POST", "/api/review/approve", nil)

	l.ApplicationApproved(context.Background(), r, actorID, applicantID, &instID, "admin", appID)
	l.ApplicationRejected(context.Background(), r, actorID, applicantID, "admin", appID, "Tax ID mismatch")

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}

	approved := logs.All()[0].ContextMap()
	if approved["event_type"] != audit.EventApplicationApproved {
		t.Errorf("event_type = %v", approved["event_type"])
	}
	if approved["institution_id"] != instID.Hex() {
		t.Errorf("institution_id = %v", approved["institution_id"])
	}
	if approved["actor_id"] != actorID.Hex() {
		t.Errorf("actor_id = %v", approved["actor_id"])
	}

	rejected := logs.All()[1].ContextMap()
	if rejected["event_type"] != audit.EventApplicationRejected {
		t.Errorf("event_type = %v", rejected["event_type"])
	}
	if rejected["detail_reason"] != "Tax ID mismatch" {
		t.Errorf("detail_reason = %v", rejected["detail_reason"])
	}
}

func TestLogger_LogoutParsesSessionIDs(t *testing.T) {
	l, logs := newLogTestLogger(Config{Auth: "log"})

	userID := primitive.NewObjectID()
	r := httptest.NewRequest("POST", "/api/logout", nil)

	// Malformed institution ID is dropped rather than failing the event.
	l.Logout(context.Background(), r, userID.Hex(), "not-a-hex-id")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["user_id"] != userID.Hex() {
		t.Errorf("user_id = %v", fields["user_id"])
	}
	if _, ok := fields["institution_id"]; ok {
		t.Error("expected no institution_id field for malformed hex")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded header wins", "198.51.100.7", "203.0.113.2", "10.0.0.1:4321", "198.51.100.7"},
		{"real ip next", "", "203.0.113.2", "10.0.0.1:4321", "203.0.113.2"},
		{"remote addr fallback", "", "", "10.0.0.1:4321", "10.0.0.1:4321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
