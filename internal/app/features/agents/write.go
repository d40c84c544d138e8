// internal/app/features/agents/write.go
package agents

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

type agentInput struct {
	FullName      string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email         string `json:"email" validate:"required,email,max=254" label:"Email"`
	AuthMethod    string `json:"auth_method" validate:"required,authmethod" label:"Auth method"`
	Password      string `json:"password"`
	Status        string `json:"status" label:"Status"`
	InstitutionID string `json:"institution_id" validate:"objectid" label:"Institution ID"`
}

func (in *agentInput) sanitize() {
	in.FullName = htmlsanitize.StripTags(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.AuthMethod = strings.TrimSpace(in.AuthMethod)
	in.Status = strings.TrimSpace(in.Status)
	in.InstitutionID = strings.TrimSpace(in.InstitutionID)
}

func (in *agentInput) validate() string {
	if msg := inputval.Validate(in).First(); msg != "" {
		return msg
	}
	if in.Status != "" && !status.IsValid(in.Status) {
		return "Status must be active or disabled."
	}
	return ""
}

// HandleCreate handles POST /api/agents. Admins name the institution in the
// body; agents always create within their own.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res, instID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var in agentInput
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
		Role:          models.RoleAgent,
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
			httpjson.Error(w, http.StatusInternalServerError, "Failed to create agent")
			return
		}
		user.PasswordHash = &hash
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create agent")
	defer cancel()

	created, err := h.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "A user with this email already exists")
			return
		}
		h.Log.Error("create agent", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create agent")
		return
	}

	h.Audit.UserCreated(r.Context(), r, res.UserID, created.ID, created.InstitutionID, res.Role, created.Role, created.AuthMethod)
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleUpdate handles PUT /api/agents/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	agent, res, _, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	var in agentInput
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
		in.Status = agent.Status
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update agent")
	defer cancel()

	err := h.Users.UpdateByRole(ctx, agent.ID, models.RoleAgent, userstore.Update{
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
		h.Log.Error("update agent", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update agent")
		return
	}

	h.Audit.UserUpdated(r.Context(), r, res.UserID, agent.ID, agent.InstitutionID, res.Role, "profile")

	saved, err := h.Users.GetAgentByID(ctx, agent.ID)
	if err != nil {
		h.Log.Error("reload agent", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load agent")
		return
	}
	httpjson.OK(w, saved)
}

// HandleDelete handles DELETE /api/agents/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	agent, res, _, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	if agent.ID == res.UserID {
		httpjson.Error(w, http.StatusConflict, "You cannot delete your own account")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete agent")
	defer cancel()

	if _, err := h.Users.DeleteByRole(ctx, agent.ID, models.RoleAgent); err != nil {
		h.Log.Error("delete agent", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete agent")
		return
	}

	h.Audit.UserDeleted(r.Context(), r, res.UserID, agent.ID, agent.InstitutionID, res.Role, agent.Role)
	httpjson.OK(w, map[string]any{"deleted": true})
}
