// internal/app/features/apply/handler.go
package apply

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/mirror"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxBodyBytes caps wizard payloads; the largest legitimate payload is a
// verification step with a 2000-char description.
const maxBodyBytes = 64 << 10

// Handler serves the onboarding wizard API. Each applicant owns at most one
// application; the wizard walks it from draft through submission.
type Handler struct {
	Apps     *applicationstore.Store
	Registry *registrystore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(apps *applicationstore.Store, registry *registrystore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Apps:     apps,
		Registry: registry,
		Audit:    audit,
		Log:      logger,
	}
}

// applicationResponse is the wizard view of a record: the record itself
// plus what the applicant can currently see and do.
type applicationResponse struct {
	Application       models.InstitutionApplication `json:"application"`
	StatusDescription string                        `json:"status_description"`
	UserActions       []string                      `json:"user_actions"`
	CanUpdate         bool                          `json:"can_update"`
	LockReason        string                        `json:"lock_reason,omitempty"`
}

func buildResponse(rec models.InstitutionApplication) applicationResponse {
	stat := application.Status(rec.Status)
	decision := application.CanUserUpdate(stat)
	return applicationResponse{
		Application:       rec,
		StatusDescription: application.Description(stat),
		UserActions:       application.UserActions(stat),
		CanUpdate:         decision.Allowed,
		LockReason:        decision.Reason,
	}
}

// ServeApplication handles GET /api/application: the caller's own record.
func (h *Handler) ServeApplication(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load application")
	defer cancel()

	rec, err := h.Apps.GetByUserID(ctx, res.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "No application found")
			return
		}
		h.Log.Error("load application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	httpjson.OK(w, buildResponse(*rec))
}

// HandlePost handles POST /api/application: create the draft on the
// organization step, or re-edit whichever step the payload carries while
// the record is still editable.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	h.handleWrite(w, r, application.ClassifyPost)
}

// HandlePut handles PUT /api/application: edit or submit, never create.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	h.handleWrite(w, r, application.ClassifyPut)
}

func (h *Handler) handleWrite(w http.ResponseWriter, r *http.Request, classify func(*models.InstitutionApplication, application.Input) application.Action) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	user, _ := auth.CurrentUser(r)

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	in, err := application.DecodeInput(raw)
	if err != nil {
		if errors.Is(err, application.ErrUnrecognizedInput) {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in = sanitizeInput(in)
	if msg := validateInput(in); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "apply write")
	defer cancel()

	var existing *models.InstitutionApplication
	rec, err := h.Apps.GetByUserID(ctx, res.UserID)
	if err == nil {
		existing = rec
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.Log.Error("load application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	now := time.Now().UTC()

	switch action := classify(existing, in); action {
	case application.ActionCreateOrganization:
		h.createDraft(ctx, w, r, in.(application.OrganizationInput), res, user.Email, now)

	case application.ActionUpdateOrganization:
		updated := application.ApplyOrganization(*existing, in.(application.OrganizationInput), now)
		h.saveAndRespond(ctx, w, r, *existing, updated, false)

	case application.ActionSubmitVerification:
		updated := application.SubmitVerification(*existing, in.(application.VerificationInput), now)
		h.saveAndRespond(ctx, w, r, *existing, updated, true)

	case application.ActionUpdateVerification:
		updated := application.ApplyVerification(*existing, in.(application.VerificationInput), now)
		h.saveAndRespond(ctx, w, r, *existing, updated, false)

	case application.ActionDataLocked:
		decision := application.CanUserUpdate(application.Status(existing.Status))
		httpjson.Error(w, http.StatusConflict, decision.Reason)

	case application.ActionInvalidState:
		httpjson.Error(w, http.StatusConflict, "Complete the organization step before adding verification details")

	default:
		httpjson.Error(w, http.StatusBadRequest, "Unrecognized request")
	}
}

func (h *Handler) createDraft(ctx context.Context, w http.ResponseWriter, r *http.Request, org application.OrganizationInput, res gates.Result, email string, now time.Time) {
	draft, err := application.NewDraft(org, res.UserID, email, now)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Apps.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, applicationstore.ErrDuplicateApplication) {
			httpjson.Error(w, http.StatusConflict, "An application already exists for this account")
			return
		}
		h.Log.Error("create application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create application")
		return
	}

	h.Audit.ApplicationCreated(r.Context(), r, res.UserID, created.ID, created.Status)
	h.mirrorToRegistry(created)

	httpjson.Write(w, http.StatusCreated, buildResponse(created))
}

func (h *Handler) saveAndRespond(ctx context.Context, w http.ResponseWriter, r *http.Request, before, updated models.InstitutionApplication, submitted bool) {
	saved, err := h.Apps.Save(ctx, updated)
	if err != nil {
		h.Log.Error("save application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to save application")
		return
	}

	if submitted {
		h.Audit.ApplicationSubmitted(r.Context(), r, saved.UserID, saved.ID, saved.InstitutionName, saved.EmailDomain)
	} else {
		h.Audit.ApplicationUpdated(r.Context(), r, saved.UserID, saved.ID, before.Status, saved.Status)
	}
	h.mirrorToRegistry(saved)

	httpjson.OK(w, buildResponse(saved))
}

// mirrorToRegistry pushes the registry projection after a successful
// primary write. It runs on its own context so an aborted request cannot
// interrupt it, and the synced flag is only set when the upsert landed.
func (h *Handler) mirrorToRegistry(rec models.InstitutionApplication) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Short(), h.Log, "registry mirror")
	defer cancel()

	ok := mirror.BestEffort(ctx, h.Log, "registry upsert", func(ctx context.Context) error {
		return h.Registry.Upsert(ctx, registrystore.ReferenceFor(rec))
	})
	if !ok {
		return
	}
	if err := h.Apps.MarkSynced(ctx, rec.ID); err != nil {
		h.Log.Warn("failed to mark application synced",
			zap.String("application_id", rec.ID.Hex()),
			zap.Error(err))
	}
}
