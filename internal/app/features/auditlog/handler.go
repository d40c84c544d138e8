// internal/app/features/auditlog/handler.go

// Package auditlog serves the admin view of recorded audit events: who
// logged in, which applications moved through review, and what staff
// changed. Events are written by the auditlog system package; this
// feature only reads them.
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/trovehq/trovehub/internal/app/store/audit"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
)

const (
	pageSize = 50

	// failedLoginWindow bounds the default lookback for the
	// failed-logins report.
	failedLoginWindow = 24 * time.Hour
)

type Handler struct {
	Audit *audit.Store
	Log   *zap.Logger
}

func NewHandler(store *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{Audit: store, Log: logger}
}

// eventView is the JSON shape of a single audit event.
type eventView struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	InstitutionID string            `json:"institution_id,omitempty"`
	UserID        string            `json:"user_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	IP            string            `json:"ip,omitempty"`
	UserAgent     string            `json:"user_agent,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func buildEventView(e audit.Event) eventView {
	v := eventView{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		IP:            e.IP,
		UserAgent:     e.UserAgent,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.InstitutionID != nil {
		v.InstitutionID = e.InstitutionID.Hex()
	}
	if e.UserID != nil {
		v.UserID = e.UserID.Hex()
	}
	if e.ActorID != nil {
		v.ActorID = e.ActorID.Hex()
	}
	return v
}

type listResponse struct {
	Events     []eventView `json:"events"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}

// ServeList handles GET /api/admin/audit. Events are filterable by
// category, event_type, user_id, institution_id, and a start_date /
// end_date range (YYYY-MM-DD), newest first, paged 50 at a time.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}
	filter.Limit = pageSize
	filter.Offset = int64(page-1) * pageSize

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit event list")
	defer cancel()

	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("audit event count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load audit events")
		return
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.Log.Error("audit event query failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load audit events")
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, buildEventView(e))
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	httpjson.OK(w, listResponse{
		Events:     views,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

// ServeFailedLogins handles GET /api/admin/audit/failed-logins, a shortcut
// report over recent unsuccessful login attempts.
func (h *Handler) ServeFailedLogins(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	window := failedLoginWindow
	if hrs, err := strconv.Atoi(query.Get(r, "hours")); err == nil && hrs > 0 {
		window = time.Duration(hrs) * time.Hour
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "failed login report")
	defer cancel()

	events, err := h.Audit.GetFailedLogins(ctx, time.Now().Add(-window), pageSize)
	if err != nil {
		h.Log.Error("failed login query failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load failed logins")
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, buildEventView(e))
	}

	httpjson.OK(w, map[string]any{
		"events": views,
		"count":  len(views),
		"since":  time.Now().Add(-window),
	})
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (audit.QueryFilter, bool) {
	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
	}

	switch filter.Category {
	case "", audit.CategoryAuth, audit.CategoryApplication, audit.CategoryAdmin:
	default:
		httpjson.Error(w, http.StatusBadRequest, "Unknown audit category")
		return audit.QueryFilter{}, false
	}

	if raw := query.Get(r, "user_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid user ID")
			return audit.QueryFilter{}, false
		}
		filter.UserID = &id
	}

	if raw := query.Get(r, "institution_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid institution ID")
			return audit.QueryFilter{}, false
		}
		filter.InstitutionID = &id
	}

	if raw := query.Get(r, "start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid start date; use YYYY-MM-DD")
			return audit.QueryFilter{}, false
		}
		filter.StartTime = &t
	}

	if raw := query.Get(r, "end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid end date; use YYYY-MM-DD")
			return audit.QueryFilter{}, false
		}
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	}

	return filter, true
}
