// internal/app/features/registry/handler.go
package registry

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	"github.com/trovehq/trovehub/internal/app/system/gates"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/normalize"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const searchLimit = 50

// Handler serves the admin view of the institution reference index. The
// index is a denormalized cache fed by the application mirror; the
// applications collection stays authoritative, so each entry is checked
// against it and flagged when the two disagree.
type Handler struct {
	Registry *registrystore.Store
	Apps     *applicationstore.Store
	Log      *zap.Logger
}

func NewHandler(registry *registrystore.Store, apps *applicationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Registry: registry, Apps: apps, Log: logger}
}

type searchEntry struct {
	Reference models.InstitutionReference `json:"reference"`
	Stale     bool                        `json:"stale"`
	Orphaned  bool                        `json:"orphaned"`
}

type searchResponse struct {
	Domain  string        `json:"domain"`
	Entries []searchEntry `json:"entries"`
	Count   int           `json:"count"`
}

// ServeSearch handles GET /api/admin/registry?domain=example.edu.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required")
	if !res.OK {
		return
	}

	domain := normalize.Domain(query.Get(r, "domain"))
	if domain == "" {
		httpjson.Error(w, http.StatusBadRequest, "Domain is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "registry search")
	defer cancel()

	refs, err := h.Registry.SearchByDomain(ctx, domain, searchLimit)
	if err != nil {
		h.Log.Error("registry search", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to search registry")
		return
	}

	userIDs := make([]primitive.ObjectID, len(refs))
	for i, ref := range refs {
		userIDs[i] = ref.UserID
	}
	statuses, err := h.Apps.StatusesByUserIDs(ctx, userIDs)
	if err != nil {
		h.Log.Warn("failed to cross-check registry entries",
			zap.String("domain", domain),
			zap.Error(err))
		statuses = nil
	}

	entries := make([]searchEntry, 0, len(refs))
	for _, ref := range refs {
		entry := searchEntry{Reference: ref}
		if statuses != nil {
			status, found := statuses[ref.UserID]
			entry.Stale = found && status != ref.Status
			entry.Orphaned = !found
		}
		entries = append(entries, entry)
	}

	httpjson.OK(w, searchResponse{
		Domain:  domain,
		Entries: entries,
		Count:   len(entries),
	})
}
