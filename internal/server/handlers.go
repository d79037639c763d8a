package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/graphpath/internal/domain"
	"github.com/vanshika/graphpath/internal/service"
)

const noPathMessage = "No path found between the specified nodes."

// PathResolver resolves shortest paths between two nodes.
type PathResolver interface {
	ResolvePath(ctx context.Context, start, end int64) (service.PathResult, error)
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	resolver PathResolver
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, resolver PathResolver) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		resolver: resolver,
	}
}

type shortestPathResponse struct {
	ID         string        `json:"id"`
	StartNode  int64         `json:"startNode"`
	EndNode    int64         `json:"endNode"`
	PathLength int           `json:"pathLength"`
	Chunks     int           `json:"chunks"`
	NoPath     bool          `json:"noPath"`
	Message    string        `json:"message,omitempty"`
	Edges      []domain.Edge `json:"edges"`
}

func (h *APIHandlers) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	start, err := parseNodeParam(query.Get("start_node"), "start_node")
	if err != nil {
		h.logger.Error("invalid shortest path request: " + err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseNodeParam(query.Get("end_node"), "end_node")
	if err != nil {
		h.logger.Error("invalid shortest path request: " + err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.resolver.ResolvePath(r.Context(), start, end)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	response := shortestPathResponse{
		ID:         result.ID,
		StartNode:  start,
		EndNode:    end,
		PathLength: result.Length,
		Chunks:     result.Chunks(),
		NoPath:     result.NoPath,
		Edges:      []domain.Edge(result.Edges),
	}
	if result.NoPath {
		response.PathLength = 0
		response.Message = noPathMessage
	}
	if response.Edges == nil {
		response.Edges = []domain.Edge{}
	}
	respondJSON(w, http.StatusOK, response)
}

func parseNodeParam(raw, name string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return id, nil
}

func statusForError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch service.KindOf(err) {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindNoPathFound:
		return http.StatusNotFound
	case service.KindInternalInconsistency:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
