package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
	"github.com/ExclusiveDisjunction/sse-back/internal/service"
)

// APIHandlers exposes the campus routing endpoints.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.RouteService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.RouteService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

// traverseRequest accepts ids as JSON numbers or numeric strings, since
// existing clients send both. end is a group label when is_group is set.
type traverseRequest struct {
	Start   json.RawMessage `json:"start"`
	End     json.RawMessage `json:"end"`
	IsGroup flexBool        `json:"is_group"`
}

type traverseResponse struct {
	IDs  []domain.NodeID `json:"ids"`
	Dist float64         `json:"dist"`
}

func (h *APIHandlers) handleTraverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req traverseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	route, ok, err := h.service.Traverse(r.Context(), input)
	if err != nil {
		if service.IsNotReady(err) {
			writeJSON(w, http.StatusServiceUnavailable, struct{}{})
			return
		}
		h.logger.Error("traverse failed", "error", err, "start", input.Start, "dest", input.Dest.String())
		writeError(w, http.StatusInternalServerError, "failed to compute route")
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}

	writeJSON(w, http.StatusOK, traverseResponse{IDs: route.Points, Dist: route.Dist})
}

func (req traverseRequest) toServiceInput() (service.TraverseInput, error) {
	if len(req.Start) == 0 || len(req.End) == 0 {
		return service.TraverseInput{}, errors.New("start and end are required")
	}

	start, err := parseNodeID(req.Start)
	if err != nil {
		return service.TraverseInput{}, fmt.Errorf("invalid start: %w", err)
	}

	if req.IsGroup {
		var label string
		if err := json.Unmarshal(req.End, &label); err != nil || strings.TrimSpace(label) == "" {
			return service.TraverseInput{}, errors.New("end must be a group name when is_group is true")
		}
		return service.TraverseInput{Start: start, Dest: domain.ByGroup(label)}, nil
	}

	dest, err := parseNodeID(req.End)
	if err != nil {
		return service.TraverseInput{}, fmt.Errorf("invalid end: %w", err)
	}
	return service.TraverseInput{Start: start, Dest: domain.ByNode(dest)}, nil
}

func parseNodeID(raw json.RawMessage) (domain.NodeID, error) {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
	} else {
		s = string(raw)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a node id", s)
	}
	return domain.NodeID(id), nil
}

// flexBool decodes true/false as JSON booleans or as "true"/"false" strings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("is_group must be a boolean")
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return errors.New("is_group must be a boolean")
	}
	*b = flexBool(v)
	return nil
}

type mapNodeResponse struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Name   string   `json:"name"`
	Group  *string  `json:"group"`
	IsPath bool     `json:"is_path"`
	Tags   []string `json:"tags"`
}

func (h *APIHandlers) handleMapNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	nodes, err := h.service.MapNodes()
	if err != nil {
		if service.IsNotReady(err) {
			writeJSON(w, http.StatusServiceUnavailable, struct{}{})
			return
		}
		h.logger.Error("failed to list map nodes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list map nodes")
		return
	}

	// Keyed by id, as the map client expects.
	response := make(map[string]mapNodeResponse, len(nodes))
	for _, n := range nodes {
		item := mapNodeResponse{
			X:      n.X,
			Y:      n.Y,
			Name:   n.Name,
			IsPath: n.IsPath,
			Tags:   n.Tags,
		}
		if n.Group != "" {
			group := n.Group
			item.Group = &group
		}
		response[strconv.FormatInt(int64(n.ID), 10)] = item
	}
	writeJSON(w, http.StatusOK, response)
}

type statusResponse struct {
	Loaded       bool     `json:"loaded"`
	Version      uint64   `json:"version"`
	LoadedAt     string   `json:"loadedAt,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Nodes        int      `json:"nodes"`
	Edges        int      `json:"edges"`
	Groups       []string `json:"groups"`
	TableRows    int      `json:"tableRows"`
	TableColumns int      `json:"tableColumns"`
	TableEntries int      `json:"tableEntries"`
	LastAttempt  string   `json:"lastAttempt,omitempty"`
	LastError    string   `json:"lastError,omitempty"`
}

func (h *APIHandlers) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	st, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.Error("manual reload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"status": toStatusResponse(st),
		})
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(st))
}

func (h *APIHandlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(h.service.Status()))
}

func toStatusResponse(st service.Status) statusResponse {
	groups := st.Groups
	if groups == nil {
		groups = []string{}
	}
	return statusResponse{
		Loaded:       st.Loaded,
		Version:      st.Version,
		LoadedAt:     formatTime(st.LoadedAt),
		Provider:     st.Provider,
		Nodes:        st.Nodes,
		Edges:        st.Edges,
		Groups:       groups,
		TableRows:    st.TableRows,
		TableColumns: st.TableColumns,
		TableEntries: st.TableEntries,
		LastAttempt:  formatTime(st.LastAttempt),
		LastError:    st.LastError,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
