// internal/app/features/institutions/write.go
package institutions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/htmlsanitize"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/inputval"
	"github.com/trovehq/trovehub/internal/app/system/status"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type institutionInput struct {
	Name        string `json:"name" validate:"required,max=300" label:"Institution name"`
	Type        string `json:"type" validate:"required" label:"Institution type"`
	EmailDomain string `json:"email_domain" validate:"max=253" label:"Email domain"`
	Website     string `json:"website" validate:"url,max=2000" label:"Website"`
	City        string `json:"city" validate:"max=200" label:"City"`
	State       string `json:"state" validate:"max=200" label:"State or province"`
	Country     string `json:"country" validate:"max=200" label:"Country"`
	ContactInfo string `json:"contact_info" validate:"max=2000" label:"Contact info"`
	Status      string `json:"status" label:"Status"`
}

func (in *institutionInput) sanitize() {
	in.Name = htmlsanitize.StripTags(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.EmailDomain = strings.TrimSpace(in.EmailDomain)
	in.Website = strings.TrimSpace(in.Website)
	in.City = htmlsanitize.StripTags(in.City)
	in.State = htmlsanitize.StripTags(in.State)
	in.Country = htmlsanitize.StripTags(in.Country)
	in.ContactInfo = htmlsanitize.StripTags(in.ContactInfo)
	in.Status = strings.TrimSpace(in.Status)
}

func (in *institutionInput) validate() string {
	if msg := inputval.Validate(in).First(); msg != "" {
		return msg
	}
	if !application.ValidInstitutionType(in.Type) {
		return "Institution type must be one of: " + strings.Join(application.InstitutionTypes, ", ") + "."
	}
	if in.Status != "" && !status.IsValid(in.Status) {
		return "Status must be active or disabled."
	}
	return ""
}

func (in *institutionInput) model() models.Institution {
	return models.Institution{
		Name:        in.Name,
		Type:        in.Type,
		EmailDomain: in.EmailDomain,
		Website:     in.Website,
		City:        in.City,
		State:       in.State,
		Country:     in.Country,
		ContactInfo: in.ContactInfo,
		Status:      in.Status,
	}
}

func decodeInstitutionInput(w http.ResponseWriter, r *http.Request) (*institutionInput, bool) {
	var in institutionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	in.sanitize()
	if msg := in.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return nil, false
	}
	return &in, true
}

// HandleCreate handles POST /api/admin/institutions: manual onboarding
// outside the application flow.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	in, ok := decodeInstitutionInput(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create institution")
	defer cancel()

	inst, err := h.Institutions.Create(ctx, in.model())
	if err != nil {
		if errors.Is(err, institutionstore.ErrDuplicateInstitution) {
			httpjson.Error(w, http.StatusConflict, "An institution with this name already exists")
			return
		}
		h.Log.Error("create institution", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create institution")
		return
	}

	h.Audit.InstitutionCreated(r.Context(), r, res.UserID, inst.ID, res.Role, inst.Name)
	httpjson.Write(w, http.StatusCreated, inst)
}

// HandleUpdate handles PUT /api/admin/institutions/{id}. The slug and email
// domain are fixed at provisioning time and silently ignored here.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	inst, res, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	in, ok := decodeInstitutionInput(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update institution")
	defer cancel()

	update := in.model()
	update.EmailDomain = ""
	if err := h.Institutions.Update(ctx, inst.ID, update); err != nil {
		if errors.Is(err, institutionstore.ErrDuplicateInstitution) {
			httpjson.Error(w, http.StatusConflict, "An institution with this name already exists")
			return
		}
		h.Log.Error("update institution", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update institution")
		return
	}

	h.Audit.InstitutionUpdated(r.Context(), r, res.UserID, inst.ID, res.Role, "profile")

	saved, err := h.Institutions.GetByID(ctx, inst.ID)
	if err != nil {
		h.Log.Error("reload institution", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load institution")
		return
	}
	httpjson.OK(w, saved)
}

// HandleDelete handles DELETE /api/admin/institutions/{id}. An institution
// with agents or locations cannot be removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	inst, res, ok := h.loadForAdmin(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete institution")
	defer cancel()

	agents, err := h.Users.Count(ctx, bson.M{"institution_id": inst.ID, "role": models.RoleAgent})
	if err != nil {
		h.Log.Error("count agents", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete institution")
		return
	}
	if agents > 0 {
		httpjson.Error(w, http.StatusConflict, "Institution still has agents; remove them first")
		return
	}

	locs, err := h.Locations.CountByInstitution(ctx, inst.ID)
	if err != nil {
		h.Log.Error("count locations", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete institution")
		return
	}
	if locs > 0 {
		httpjson.Error(w, http.StatusConflict, "Institution still has locations; remove them first")
		return
	}

	if _, err := h.Institutions.Delete(ctx, inst.ID); err != nil {
		h.Log.Error("delete institution", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete institution")
		return
	}

	h.Audit.InstitutionDeleted(r.Context(), r, res.UserID, inst.ID, res.Role, inst.Name)
	httpjson.OK(w, map[string]any{"deleted": true})
}
