package coordinator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/dreamware/dbfs/internal/dbfserr"
)

// Server exposes a Coordinator over the HTTP contract of §6.2.
type Server struct {
	c      *Coordinator
	logger *zap.Logger
}

// NewServer wraps c in an HTTP handler.
func NewServer(c *Coordinator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{c: c, logger: logger}
}

// Routes returns the HTTP handler exposing every endpoint in §6.2.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/create-shards", s.handleCreateShards)
	mux.HandleFunc("/create-remote-shards", s.handleCreateRemoteShards)
	mux.HandleFunc("/do-dbfs", s.handleDoDBFS)
	mux.HandleFunc("/do-ddbfs", s.handleDoDDBFS)
	mux.HandleFunc("/role", s.handleRole)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/shard-health", s.handleShardHealth)
	mux.Handle("/metrics", s.c.Metrics().Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var derr *dbfserr.Error
	status := http.StatusInternalServerError
	if errors.As(err, &derr) {
		status = derr.Kind.HTTPStatus()
	}
	logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{err.Error()})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dbfserr.Configuration("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dbfserr.Configuration("%s must be a number, got %q", key, raw)
	}
	return f, nil
}

func queryBool(r *http.Request, key string) bool {
	raw := r.URL.Query().Get(key)
	b, _ := strconv.ParseBool(raw)
	return b
}

func (s *Server) handleCreateShards(w http.ResponseWriter, r *http.Request) {
	shards, err := queryInt(r, "shards")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	nodes, err := queryInt(r, "nodes")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	edges, err := queryFloat(r, "edges")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	farNodes, err := queryInt(r, "farnodes")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.c.CreateShards(shards, nodes, edges, farNodes); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Role string `json:"role"`
	}{s.c.Role().String()})
}

func (s *Server) handleCreateRemoteShards(w http.ResponseWriter, r *http.Request) {
	shards, err := queryInt(r, "shards")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	farNodes, err := queryInt(r, "farnodes")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	portsStart, err := queryInt(r, "shard-ports-start-at")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shardsIP := r.URL.Query().Get("shards-ip")
	if shardsIP == "" {
		writeError(w, s.logger, dbfserr.Configuration("shards-ip is required"))
		return
	}

	if err := s.c.CreateRemoteShards(r.Context(), shards, shardsIP, portsStart, farNodes); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Role string `json:"role"`
	}{s.c.Role().String()})
}

func (s *Server) runDBFS(w http.ResponseWriter, r *http.Request, ddbfs bool) {
	shard, err := queryInt(r, "shard")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	verbose := queryBool(r, "verbose")

	var stats Stats
	if ddbfs {
		stats, err = s.c.RunDDBFS(r.Context(), shard, verbose)
	} else {
		stats, err = s.c.RunDBFS(r.Context(), shard, verbose)
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	resp := struct {
		CrossCuts       int             `json:"crossCuts"`
		NodesVisited    int             `json:"nodesVisited"`
		BFSSeconds      float64         `json:"bfsSeconds"`
		OverheadSeconds float64         `json:"overheadSeconds"`
		Trail           []VisitLogEntry `json:"trail,omitempty"`
	}{
		CrossCuts:       stats.CrossCuts,
		NodesVisited:    stats.NodesVisited,
		BFSSeconds:      stats.TimeInside.Seconds(),
		OverheadSeconds: stats.TimeOutside.Seconds(),
		Trail:           stats.Trail,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDoDBFS(w http.ResponseWriter, r *http.Request) {
	s.runDBFS(w, r, false)
}

func (s *Server) handleDoDDBFS(w http.ResponseWriter, r *http.Request) {
	s.runDBFS(w, r, true)
}

func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Role string `json:"role"`
	}{s.c.Role().String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{"ok"})
}

// handleShardHealth reports the coordinator-side health monitor's view of
// the current remote fleet (§9A). Returns an empty object when the
// coordinator is not running a remote fleet (no MASTER-SERVER role yet, or
// an in-process fleet with nothing to poll over HTTP).
func (s *Server) handleShardHealth(w http.ResponseWriter, r *http.Request) {
	all := s.c.ShardHealth()
	out := make(map[string]string, len(all))
	for id, h := range all {
		out[strconv.Itoa(id)] = h.Status
	}
	writeJSON(w, http.StatusOK, out)
}
