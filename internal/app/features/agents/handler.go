// internal/app/features/agents/handler.go
package agents

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listLimit = 500

// Handler manages agent accounts. Admins work across institutions; agents
// manage the roster of their own.
type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Audit: audit, Log: logger}
}

// scope gates the request to admins and agents. For agents it also resolves
// their institution; an agent without one cannot manage the roster.
func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (gates.Result, *primitive.ObjectID, bool) {
	res := gates.RequireAdminOrAgent(w, r, "Agent access required")
	if !res.OK {
		return res, nil, false
	}
	if res.Role == models.RoleAdmin {
		return res, nil, true
	}

	su, ok := auth.CurrentUser(r)
	if !ok || su.InstitutionID == "" {
		httpjson.Error(w, http.StatusForbidden, "No institution assigned to this account")
		return res, nil, false
	}
	instID, err := primitive.ObjectIDFromHex(su.InstitutionID)
	if err != nil {
		httpjson.Error(w, http.StatusForbidden, "No institution assigned to this account")
		return res, nil, false
	}
	return res, &instID, true
}

// ServeList handles GET /api/agents. Admins may filter with
// ?institution_id=; agents always see their own institution.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, instID, ok := h.scope(w, r)
	if !ok {
		return
	}

	filter := bson.M{"role": models.RoleAgent}
	if instID != nil {
		filter["institution_id"] = *instID
	} else if hex := query.Get(r, "institution_id"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid institution ID")
			return
		}
		filter["institution_id"] = id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list agents")
	defer cancel()

	find := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(listLimit)
	rows, err := h.Users.Find(ctx, filter, find)
	if err != nil {
		h.Log.Error("list agents", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load agents")
		return
	}

	httpjson.OK(w, map[string]any{"agents": rows, "count": len(rows)})
}

// ServeAgent handles GET /api/agents/{id}.
func (h *Handler) ServeAgent(w http.ResponseWriter, r *http.Request) {
	agent, _, _, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	httpjson.OK(w, agent)
}

// loadScoped gates the request, loads the agent named in the URL, and
// enforces institution scoping. Out-of-scope agents read as missing so the
// roster of another institution is not probeable.
func (h *Handler) loadScoped(w http.ResponseWriter, r *http.Request) (*models.User, gates.Result, *primitive.ObjectID, bool) {
	res, instID, ok := h.scope(w, r)
	if !ok {
		return nil, res, nil, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid agent ID")
		return nil, res, instID, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load agent")
	defer cancel()

	agent, err := h.Users.GetAgentByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Agent not found")
			return nil, res, instID, false
		}
		h.Log.Error("load agent", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load agent")
		return nil, res, instID, false
	}

	if instID != nil && (agent.InstitutionID == nil || *agent.InstitutionID != *instID) {
		httpjson.Error(w, http.StatusNotFound, "Agent not found")
		return nil, res, instID, false
	}
	return agent, res, instID, true
}
