// internal/app/features/review/decisions.go
package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	"github.com/trovehq/trovehub/internal/app/system/htmlsanitize"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/mailer"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleStartReview handles POST /api/admin/applications/{id}/review.
func (h *Handler) HandleStartReview(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	if decision := application.CanAdminStartReview(application.Status(rec.Status)); !decision.Allowed {
		httpjson.Error(w, http.StatusConflict, decision.Reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "start review")
	defer cancel()

	updated := application.StartReview(*rec, time.Now().UTC())
	saved, err := h.Apps.Save(ctx, updated)
	if err != nil {
		h.Log.Error("start review", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to start review")
		return
	}

	h.Audit.ReviewStarted(r.Context(), r, res.UserID, saved.UserID, res.Role, saved.ID)
	h.mirrorToRegistry(saved)

	httpjson.OK(w, buildAdminView(saved))
}

// HandleApprove handles POST /api/admin/applications/{id}/approve. Approval
// provisions the institution, links it to the application, and promotes the
// applicant to agent of the new institution.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	if !application.CanBeApproved(*rec) {
		decision := application.CanAdminChangeStatus(application.Status(rec.Status), application.StatusApproved)
		httpjson.Error(w, http.StatusConflict, decision.Reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "approve application")
	defer cancel()

	now := time.Now().UTC()
	approved := application.Approve(*rec, res.UserID.Hex(), now)

	inst, err := h.Institutions.Create(ctx, models.Institution{
		Name:        rec.InstitutionName,
		Type:        rec.InstitutionType,
		EmailDomain: rec.EmailDomain,
		Website:     rec.Website,
		City:        rec.City,
		State:       rec.State,
		Country:     rec.Country,
	})
	if err != nil {
		if errors.Is(err, institutionstore.ErrDuplicateInstitution) {
			httpjson.Error(w, http.StatusConflict, "An institution with this name already exists")
			return
		}
		h.Log.Error("provision institution", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to provision institution")
		return
	}

	final := application.AttachOrg(approved, inst.ID.Hex(), inst.Slug, now)
	saved, err := h.Apps.Save(ctx, final)
	if err != nil {
		h.Log.Error("save approved application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to save application")
		return
	}

	// The applicant becomes the first agent of the new institution. A
	// failure here is recoverable by an admin role change, so the approval
	// itself stands.
	if err := h.Users.SetRole(ctx, saved.UserID, models.RoleAgent, &inst.ID); err != nil {
		h.Log.Warn("failed to promote applicant to agent",
			zap.String("user_id", saved.UserID.Hex()),
			zap.String("institution_id", inst.ID.Hex()),
			zap.Error(err))
	}

	h.Audit.ApplicationApproved(r.Context(), r, res.UserID, saved.UserID, &inst.ID, res.Role, saved.ID)
	h.mirrorToRegistry(saved)
	h.sendDecisionMail(saved, mailer.BuildApprovalEmail)

	httpjson.OK(w, buildAdminView(saved))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// HandleReject handles POST /api/admin/applications/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	reason := htmlsanitize.StripTags(req.Reason)
	if reason == "" {
		httpjson.Error(w, http.StatusBadRequest, "Rejection reason is required")
		return
	}

	if !application.CanBeRejected(*rec) {
		decision := application.CanAdminChangeStatus(application.Status(rec.Status), application.StatusRejected)
		httpjson.Error(w, http.StatusConflict, decision.Reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reject application")
	defer cancel()

	updated := application.Reject(*rec, res.UserID.Hex(), reason, time.Now().UTC())
	saved, err := h.Apps.Save(ctx, updated)
	if err != nil {
		h.Log.Error("reject application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to save application")
		return
	}

	h.Audit.ApplicationRejected(r.Context(), r, res.UserID, saved.UserID, res.Role, saved.ID, reason)
	h.mirrorToRegistry(saved)
	h.sendDecisionMail(saved, mailer.BuildRejectionEmail)

	httpjson.OK(w, buildAdminView(saved))
}

type reopenRequest struct {
	Reason string `json:"reason"`
}

// HandleReopen handles POST /api/admin/applications/{id}/reopen: a rejected
// application under appeal, or one pulled back out of active review,
// returns to the submission queue.
func (h *Handler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	var req reopenRequest
	if r.Body != nil {
		// Body is optional for reopen.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	reason := htmlsanitize.StripTags(req.Reason)

	if decision := application.CanAdminChangeStatus(application.Status(rec.Status), application.StatusPendingVerification); !decision.Allowed {
		httpjson.Error(w, http.StatusConflict, decision.Reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reopen application")
	defer cancel()

	updated := application.Reopen(*rec, time.Now().UTC())
	saved, err := h.Apps.Save(ctx, updated)
	if err != nil {
		h.Log.Error("reopen application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to save application")
		return
	}

	h.Audit.ApplicationReopened(r.Context(), r, res.UserID, saved.UserID, res.Role, saved.ID, reason)
	h.mirrorToRegistry(saved)
	h.sendDecisionMail(saved, mailer.BuildReopenEmail)

	httpjson.OK(w, buildAdminView(saved))
}
