// internal/app/features/locations/write.go
package locations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	locationstore "github.com/trovehq/trovehub/internal/app/store/locations"
	"github.com/trovehq/trovehub/internal/app/system/htmlsanitize"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/inputval"
	"github.com/trovehq/trovehub/internal/app/system/status"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type locationInput struct {
	Name          string `json:"name" validate:"required,max=200" label:"Location name"`
	Description   string `json:"description" validate:"max=2000" label:"Description"`
	Building      string `json:"building" validate:"max=200" label:"Building"`
	Room          string `json:"room" validate:"max=100" label:"Room"`
	Status        string `json:"status" label:"Status"`
	InstitutionID string `json:"institution_id" validate:"objectid" label:"Institution ID"`
}

func (in *locationInput) sanitize() {
	in.Name = htmlsanitize.StripTags(in.Name)
	in.Description = htmlsanitize.StripTags(in.Description)
	in.Building = htmlsanitize.StripTags(in.Building)
	in.Room = htmlsanitize.StripTags(in.Room)
	in.Status = strings.TrimSpace(in.Status)
	in.InstitutionID = strings.TrimSpace(in.InstitutionID)
}

func (in *locationInput) validate() string {
	if msg := inputval.Validate(in).First(); msg != "" {
		return msg
	}
	if in.Status != "" && !status.IsValid(in.Status) {
		return "Status must be active or disabled."
	}
	return ""
}

// HandleCreate handles POST /api/locations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res, instID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var in locationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.sanitize()
	if msg := in.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	if instID == nil {
		if in.InstitutionID == "" {
			httpjson.Error(w, http.StatusBadRequest, "Institution ID is required.")
			return
		}
		id, err := primitive.ObjectIDFromHex(in.InstitutionID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid institution ID")
			return
		}
		instID = &id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create location")
	defer cancel()

	loc, err := h.Locations.Create(ctx, models.Location{
		InstitutionID: *instID,
		Name:          in.Name,
		Description:   in.Description,
		Building:      in.Building,
		Room:          in.Room,
		Status:        in.Status,
	})
	if err != nil {
		if errors.Is(err, locationstore.ErrDuplicateLocation) {
			httpjson.Error(w, http.StatusConflict, "A location with this name already exists at this institution")
			return
		}
		h.Log.Error("create location", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create location")
		return
	}

	h.Audit.LocationCreated(r.Context(), r, res.UserID, loc.ID, &loc.InstitutionID, res.Role, loc.Name)
	httpjson.Write(w, http.StatusCreated, loc)
}

// HandleUpdate handles PUT /api/locations/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	loc, res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	var in locationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.sanitize()
	if msg := in.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update location")
	defer cancel()

	err := h.Locations.Update(ctx, loc.ID, loc.InstitutionID, models.Location{
		Name:        in.Name,
		Description: in.Description,
		Building:    in.Building,
		Room:        in.Room,
		Status:      in.Status,
	})
	if err != nil {
		if errors.Is(err, locationstore.ErrDuplicateLocation) {
			httpjson.Error(w, http.StatusConflict, "A location with this name already exists at this institution")
			return
		}
		h.Log.Error("update location", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update location")
		return
	}

	h.Audit.LocationUpdated(r.Context(), r, res.UserID, loc.ID, &loc.InstitutionID, res.Role, "profile")

	saved, err := h.Locations.GetByID(ctx, loc.ID)
	if err != nil {
		h.Log.Error("reload location", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load location")
		return
	}
	httpjson.OK(w, saved)
}

// HandleDelete handles DELETE /api/locations/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	loc, res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete location")
	defer cancel()

	if _, err := h.Locations.Delete(ctx, loc.ID, loc.InstitutionID); err != nil {
		h.Log.Error("delete location", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}

	h.Audit.LocationDeleted(r.Context(), r, res.UserID, loc.ID, &loc.InstitutionID, res.Role, loc.Name)
	httpjson.OK(w, map[string]any{"deleted": true})
}
