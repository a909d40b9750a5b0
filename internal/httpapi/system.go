package httpapi

import (
	"net/http"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/apperr"
)

type serviceMetadata struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, serviceMetadata{
		Name:    h.info.Name,
		Version: h.info.Version,
		Endpoints: map[string]string{
			"users":    "/users",
			"posts":    "/posts",
			"comments": "/comments",
		},
	}, "Welcome to the "+h.info.Name+" API")
}

// testDB reports the number of nodes in the database.
func (h *Handler) testDB(w http.ResponseWriter, r *http.Request) error {
	count, err := h.db.CountNodes(r.Context())
	if err != nil {
		return &apperr.AppError{Kind: apperr.KindInternal, Message: "Neo4j connection error: " + err.Error(), Cause: err}
	}
	respond(w, http.StatusOK, map[string]int64{"node_count": count}, "Connection to Neo4j established")
	return nil
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Verify(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Error: "database unreachable: " + err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "healthy"}, "")
}

func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{Success: false, Error: "route not found"})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Error: "method not allowed"})
}
