// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const recentDecisionLimit = 10

// Handler serves the admin overview: the review queue at a glance plus
// platform totals.
type Handler struct {
	Apps         *applicationstore.Store
	Institutions *institutionstore.Store
	Users        *userstore.Store
	Registry     *registrystore.Store
	Log          *zap.Logger
}

func NewHandler(
	apps *applicationstore.Store,
	institutions *institutionstore.Store,
	users *userstore.Store,
	registry *registrystore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Apps:         apps,
		Institutions: institutions,
		Users:        users,
		Registry:     registry,
		Log:          logger,
	}
}

type summary struct {
	Applications    map[string]int64                `json:"applications"`
	Institutions    int64                           `json:"institutions"`
	Agents          int64                           `json:"agents"`
	Members         int64                           `json:"members"`
	RegistryEntries int64                           `json:"registry_entries"`
	UnsyncedMirrors int64                           `json:"unsynced_mirrors"`
	RecentDecisions []models.InstitutionApplication `json:"recent_decisions"`
}

// ServeSummary handles GET /api/admin/dashboard.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard summary")
	defer cancel()

	byStatus, err := h.Apps.CountByStatus(ctx)
	if err != nil {
		h.Log.Error("count applications by status", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	// Zero-fill so every status is present for the client.
	counts := make(map[string]int64, len(application.Statuses))
	for _, s := range application.Statuses {
		counts[string(s)] = byStatus[string(s)]
	}

	out := summary{Applications: counts}

	if n, err := h.Institutions.Count(ctx, bson.M{}); err == nil {
		out.Institutions = n
	}
	if n, err := h.Users.Count(ctx, bson.M{"role": models.RoleAgent}); err == nil {
		out.Agents = n
	}
	if n, err := h.Users.Count(ctx, bson.M{"role": models.RoleMember}); err == nil {
		out.Members = n
	}
	if n, err := h.Registry.Count(ctx, bson.M{}); err == nil {
		out.RegistryEntries = n
	}
	if n, err := h.Apps.Count(ctx, bson.M{"synced_to_registry": false}); err == nil {
		out.UnsyncedMirrors = n
	}

	recent, err := h.Apps.Find(ctx,
		bson.M{"reviewed_at": bson.M{"$ne": nil}},
		options.Find().
			SetSort(bson.D{{Key: "reviewed_at", Value: -1}}).
			SetLimit(recentDecisionLimit))
	if err != nil {
		h.Log.Warn("load recent decisions", zap.Error(err))
	} else {
		out.RecentDecisions = recent
	}
	if out.RecentDecisions == nil {
		out.RecentDecisions = []models.InstitutionApplication{}
	}

	httpjson.OK(w, out)
}
