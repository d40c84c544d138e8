// internal/app/features/locations/handler.go
package locations

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	locationstore "github.com/trovehq/trovehub/internal/app/store/locations"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages an institution's lost & found locations: the physical
// desks where found items are dropped off and claimed. Agents manage their
// own institution's desks; admins name the institution with a query
// parameter.
type Handler struct {
	Locations *locationstore.Store
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(locations *locationstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Locations: locations, Audit: audit, Log: logger}
}

// scope gates the request and resolves the institution the caller works
// in. Agents are bound to their own; admins pass ?institution_id= (or the
// record's institution on item routes).
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

// ServeList handles GET /api/locations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, instID, ok := h.scope(w, r)
	if !ok {
		return
	}

	if instID == nil {
		hex := query.Get(r, "institution_id")
		if hex == "" {
			httpjson.Error(w, http.StatusBadRequest, "Institution ID is required.")
			return
		}
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid institution ID")
			return
		}
		instID = &id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list locations")
	defer cancel()

	rows, err := h.Locations.ListByInstitution(ctx, *instID)
	if err != nil {
		h.Log.Error("list locations", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load locations")
		return
	}
	httpjson.OK(w, map[string]any{"locations": rows, "count": len(rows)})
}

// ServeLocation handles GET /api/locations/{id}.
func (h *Handler) ServeLocation(w http.ResponseWriter, r *http.Request) {
	loc, _, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	httpjson.OK(w, loc)
}

// loadScoped gates the request and loads the location named in the URL.
// Agents only see desks of their own institution; out-of-scope desks read
// as missing.
func (h *Handler) loadScoped(w http.ResponseWriter, r *http.Request) (*models.Location, gates.Result, bool) {
	res, instID, ok := h.scope(w, r)
	if !ok {
		return nil, res, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid location ID")
		return nil, res, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load location")
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Location not found")
			return nil, res, false
		}
		h.Log.Error("load location", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load location")
		return nil, res, false
	}

	if instID != nil && loc.InstitutionID != *instID {
		httpjson.Error(w, http.StatusNotFound, "Location not found")
		return nil, res, false
	}
	return &loc, res, true
}
