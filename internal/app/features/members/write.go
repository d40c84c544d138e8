// internal/app/features/members/write.go
package members

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/authutil"
	"github.com/trovehq/trovehub/internal/app/system/htmlsanitize"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/inputval"
	"github.com/trovehq/trovehub/internal/app/system/status"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memberInput struct {
	FullName      string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email         string `json:"email" validate:"required,email,max=254" label:"Email"`
	AuthMethod    string `json:"auth_method" validate:"required,authmethod" label:"Auth method"`
	Password      string `json:"password"`
	Status        string `json:"status" label:"Status"`
	InstitutionID string `json:"institution_id" validate:"objectid" label:"Institution ID"`
}

func (in *memberInput) sanitize() {
	in.FullName = htmlsanitize.StripTags(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.AuthMethod = strings.TrimSpace(in.AuthMethod)
	in.Status = strings.TrimSpace(in.Status)
	in.InstitutionID = strings.TrimSpace(in.InstitutionID)
}

func (in *memberInput) validate() string {
	if msg := inputval.Validate(in).First(); msg != "" {
		return msg
	}
	if in.Status != "" && !status.IsValid(in.Status) {
		return "Status must be active or disabled."
	}
	return ""
}

// HandleCreate handles POST /api/members.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res, instID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var in memberInput
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

	user := models.User{
		FullName:      in.FullName,
		Email:         in.Email,
		AuthMethod:    in.AuthMethod,
		Role:          models.RoleMember,
		Status:        in.Status,
		InstitutionID: instID,
	}

	if in.AuthMethod == "password" {
		if err := authutil.ValidatePassword(in.Password); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := authutil.HashPassword(in.Password)
		if err != nil {
			h.Log.Error("hash password", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "Failed to create member")
			return
		}
		user.PasswordHash = &hash
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create member")
	defer cancel()

	created, err := h.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "A user with this email already exists")
			return
		}
		h.Log.Error("create member", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create member")
		return
	}

	h.Audit.UserCreated(r.Context(), r, res.UserID, created.ID, created.InstitutionID, res.Role, created.Role, created.AuthMethod)
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleUpdate handles PUT /api/members/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	member, res, _, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	var in memberInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.sanitize()
	if msg := in.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	if in.Status == "" {
		in.Status = member.Status
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update member")
	defer cancel()

	err := h.Users.UpdateByRole(ctx, member.ID, models.RoleMember, userstore.Update{
		FullName:   in.FullName,
		Email:      in.Email,
		AuthMethod: in.AuthMethod,
		Status:     in.Status,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "A user with this email already exists")
			return
		}
		h.Log.Error("update member", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update member")
		return
	}

	h.Audit.UserUpdated(r.Context(), r, res.UserID, member.ID, member.InstitutionID, res.Role, "profile")

	saved, err := h.Users.GetMemberByID(ctx, member.ID)
	if err != nil {
		h.Log.Error("reload member", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load member")
		return
	}
	httpjson.OK(w, saved)
}

// HandleDelete handles DELETE /api/members/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	member, res, _, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete member")
	defer cancel()

	if _, err := h.Users.DeleteByRole(ctx, member.ID, models.RoleMember); err != nil {
		h.Log.Error("delete member", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete member")
		return
	}

	h.Audit.UserDeleted(r.Context(), r, res.UserID, member.ID, member.InstitutionID, res.Role, member.Role)
	httpjson.OK(w, map[string]any{"deleted": true})
}
