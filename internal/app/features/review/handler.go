// internal/app/features/review/handler.go
package review

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/mailer"
	"github.com/trovehq/trovehub/internal/app/system/mirror"
	"github.com/trovehq/trovehub/internal/app/system/normalize"
	"github.com/trovehq/trovehub/internal/app/system/paging"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Handler serves the admin review queue: listing submitted applications and
// walking each through start-review, approve, reject, and reopen.
type Handler struct {
	Apps         *applicationstore.Store
	Registry     *registrystore.Store
	Institutions *institutionstore.Store
	Users        *userstore.Store
	Audit        *auditlog.Logger
	Mail         *mailer.Mailer
	SiteName     string
	BaseURL      string
	Log          *zap.Logger
}

func NewHandler(
	apps *applicationstore.Store,
	registry *registrystore.Store,
	institutions *institutionstore.Store,
	users *userstore.Store,
	audit *auditlog.Logger,
	mail *mailer.Mailer,
	siteName, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Apps:         apps,
		Registry:     registry,
		Institutions: institutions,
		Users:        users,
		Audit:        audit,
		Mail:         mail,
		SiteName:     siteName,
		BaseURL:      baseURL,
		Log:          logger,
	}
}

// adminView is the review-queue presentation of one application.
type adminView struct {
	Application       models.InstitutionApplication `json:"application"`
	StatusDescription string                        `json:"status_description"`
	AdminActions      []string                      `json:"admin_actions"`
}

func buildAdminView(rec models.InstitutionApplication) adminView {
	stat := application.Status(rec.Status)
	return adminView{
		Application:       rec,
		StatusDescription: application.Description(stat),
		AdminActions:      application.AdminActions(stat),
	}
}

type listResponse struct {
	Applications []adminView `json:"applications"`
	HasPrev      bool        `json:"has_prev"`
	HasNext      bool        `json:"has_next"`
	PrevCursor   string      `json:"prev_cursor,omitempty"`
	NextCursor   string      `json:"next_cursor,omitempty"`
}

// ServeList handles GET /api/admin/applications. Filterable by status,
// keyset-paged on the folded institution name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	filter := bson.M{}
	if status := normalize.Status(query.Get(r, "status")); status != "" {
		if !application.ValidStatus(application.Status(status)) {
			httpjson.Error(w, http.StatusBadRequest, "Unknown application status")
			return
		}
		filter["status"] = status
	}

	before := query.Get(r, "before")
	after := query.Get(r, "after")
	cfg := paging.ConfigureKeyset(before, after)
	if win := cfg.KeysetWindow("institution_name_ci"); win != nil {
		for k, v := range win {
			filter[k] = v
		}
	}

	find := options.Find()
	cfg.ApplyToFind(find, "institution_name_ci")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list applications")
	defer cancel()

	rows, err := h.Apps.Find(ctx, filter, find)
	if err != nil {
		h.Log.Error("list applications", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load applications")
		return
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	page := paging.TrimPage(&rows, before, after)
	prev, next := paging.BuildCursors(rows,
		func(a models.InstitutionApplication) string { return a.InstitutionNameCI },
		func(a models.InstitutionApplication) primitive.ObjectID { return a.ID })

	views := make([]adminView, 0, len(rows))
	for _, rec := range rows {
		views = append(views, buildAdminView(rec))
	}

	resp := listResponse{
		Applications: views,
		HasPrev:      page.HasPrev,
		HasNext:      page.HasNext,
	}
	if page.HasPrev {
		resp.PrevCursor = prev
	}
	if page.HasNext {
		resp.NextCursor = next
	}
	httpjson.OK(w, resp)
}

// ServeApplication handles GET /api/admin/applications/{id}.
func (h *Handler) ServeApplication(w http.ResponseWriter, r *http.Request) {
	rec, _, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}
	httpjson.OK(w, buildAdminView(*rec))
}

// loadForAdmin gates the request to admins and loads the application named
// in the URL. On failure the response is already written.
func (h *Handler) loadForAdmin(w http.ResponseWriter, r *http.Request) (*models.InstitutionApplication, gates.Result, bool) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return nil, res, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid application ID")
		return nil, res, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load application")
	defer cancel()

	rec, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Application not found")
			return nil, res, false
		}
		h.Log.Error("load application", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load application")
		return nil, res, false
	}
	return rec, res, true
}

// mirrorToRegistry pushes the registry projection after a decision write,
// on its own context so a closed request cannot interrupt it.
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

// sendDecisionMail delivers a decision notice to the applicant. Failures
// are logged; the decision stands regardless.
func (h *Handler) sendDecisionMail(rec models.InstitutionApplication, build func(mailer.DecisionEmailData) mailer.Email) {
	if h.Mail == nil {
		return
	}

	applicantName := rec.UserEmail
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Short(), h.Log, "load applicant for mail")
	defer cancel()
	if u, err := h.Users.GetByID(ctx, rec.UserID); err == nil && u.FullName != "" {
		applicantName = u.FullName
	}

	email := build(mailer.DecisionEmailData{
		SiteName:        h.SiteName,
		ApplicantName:   applicantName,
		InstitutionName: rec.InstitutionName,
		Reason:          rec.RejectionReason,
		DashboardURL:    h.BaseURL + "/application",
	})
	email.To = rec.UserEmail
	if err := h.Mail.Send(email); err != nil {
		h.Log.Warn("failed to send decision email",
			zap.String("to", rec.UserEmail),
			zap.Error(err))
	}
}
