// internal/app/features/institutions/handler.go
package institutions

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	locationstore "github.com/trovehq/trovehub/internal/app/store/locations"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/paging"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Handler serves the admin institution directory. Institutions are normally
// provisioned by application approval; the create endpoint exists for the
// occasional manual onboarding.
type Handler struct {
	Institutions *institutionstore.Store
	Users        *userstore.Store
	Locations    *locationstore.Store
	Audit        *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(
	institutions *institutionstore.Store,
	users *userstore.Store,
	locations *locationstore.Store,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Institutions: institutions,
		Users:        users,
		Locations:    locations,
		Audit:        audit,
		Log:          logger,
	}
}

type listResponse struct {
	Institutions []models.Institution `json:"institutions"`
	HasPrev      bool                 `json:"has_prev"`
	HasNext      bool                 `json:"has_next"`
	PrevCursor   string               `json:"prev_cursor,omitempty"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

// ServeList handles GET /api/admin/institutions. Supports a folded-name
// prefix search via ?q= and keyset paging on the folded name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	filter := bson.M{}
	if q := text.Fold(query.Get(r, "q")); q != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q)}
	}

	before := query.Get(r, "before")
	after := query.Get(r, "after")
	cfg := paging.ConfigureKeyset(before, after)
	if win := cfg.KeysetWindow("name_ci"); win != nil {
		for k, v := range win {
			filter[k] = v
		}
	}

	find := options.Find()
	cfg.ApplyToFind(find, "name_ci")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list institutions")
	defer cancel()

	rows, err := h.Institutions.Find(ctx, filter, find)
	if err != nil {
		h.Log.Error("list institutions", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load institutions")
		return
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	page := paging.TrimPage(&rows, before, after)
	prev, next := paging.BuildCursors(rows,
		func(i models.Institution) string { return i.NameCI },
		func(i models.Institution) primitive.ObjectID { return i.ID })

	resp := listResponse{
		Institutions: rows,
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

type institutionView struct {
	Institution models.Institution `json:"institution"`
	AgentCount  int64              `json:"agent_count"`
	MemberCount int64              `json:"member_count"`
	Locations   int64              `json:"location_count"`
}

// ServeInstitution handles GET /api/admin/institutions/{id}.
func (h *Handler) ServeInstitution(w http.ResponseWriter, r *http.Request) {
	inst, _, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "institution counts")
	defer cancel()

	view := institutionView{Institution: *inst}
	if n, err := h.Users.Count(ctx, bson.M{"institution_id": inst.ID, "role": models.RoleAgent}); err == nil {
		view.AgentCount = n
	}
	if n, err := h.Users.Count(ctx, bson.M{"institution_id": inst.ID, "role": models.RoleMember}); err == nil {
		view.MemberCount = n
	}
	if n, err := h.Locations.CountByInstitution(ctx, inst.ID); err == nil {
		view.Locations = n
	}
	httpjson.OK(w, view)
}

// loadForAdmin gates the request to admins and loads the institution named
// in the URL. On failure the response is already written.
func (h *Handler) loadForAdmin(w http.ResponseWriter, r *http.Request) (*models.Institution, gates.Result, bool) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return nil, res, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid institution ID")
		return nil, res, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load institution")
	defer cancel()

	inst, err := h.Institutions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Institution not found")
			return nil, res, false
		}
		h.Log.Error("load institution", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load institution")
		return nil, res, false
	}
	return &inst, res, true
}
