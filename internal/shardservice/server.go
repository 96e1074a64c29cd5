package shardservice

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/dbfs/internal/dbfserr"
	"github.com/dreamware/dbfs/internal/metrics"
	"github.com/dreamware/dbfs/internal/shardgraph"
	"github.com/dreamware/dbfs/internal/wire"
)

// Service holds every shard this process is responsible for, keyed by
// shard id, and serves the query-string HTTP contract of §6.1 against
// them. A single process can host more than one shard id, matching the
// distilled source's fleet-of-shards-per-process model.
type Service struct {
	mu      sync.RWMutex
	shards  map[int]*shardgraph.Shard
	logger  *zap.Logger
	metrics *metrics.Shard
}

// New builds an empty Service.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		shards:  make(map[int]*shardgraph.Shard),
		logger:  logger,
		metrics: metrics.NewShard(),
	}
}

// Routes returns the HTTP handler exposing every endpoint in §6.1, plus
// the supplementary center-node, health and metrics endpoints (§9A).
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/create-graph-shard", s.handleCreateGraphShard)
	mux.HandleFunc("/nodes", s.handleNodes)
	mux.HandleFunc("/edges", s.handleEdges)
	mux.HandleFunc("/most-distant-internal-nodes", s.handleMostDistantInternalNodes)
	mux.HandleFunc("/add-edge-external", s.handleAddEdgeExternal)
	mux.HandleFunc("/bfs-trees-with-remote-nodes", s.handleBFS)
	mux.HandleFunc("/bfs-trees-with-remote-nodes-from-center-node", s.handleBFSFromCenter)
	mux.HandleFunc("/center-node", s.handleCenterNode)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *Service) shard(id int) (*shardgraph.Shard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shards[id]
	if !ok {
		return nil, dbfserr.NotFound("shard %d does not exist on this service", id)
	}
	return sh, nil
}

func queryID(r *http.Request) (int, error) {
	return queryInt(r, "id")
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
	writeJSON(w, status, wire.ErrorResponse{Error: err.Error()})
}

func (s *Service) handleCreateGraphShard(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	n, err := queryInt(r, "nodes")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	p, err := queryFloat(r, "edges")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	shard := shardgraph.NewShard(id, n, p, rand.New(rand.NewSource(int64(id)+1)))

	s.mu.Lock()
	s.shards[id] = shard
	s.mu.Unlock()

	edgeCount := len(shard.Edges())
	writeJSON(w, http.StatusOK, wire.CreateShardResponse{edgeCount, shard.CenterNode()})
	s.logger.Info("shard created", zap.Int("shard", id), zap.Int("nodes", n), zap.Int("edges", edgeCount))
}

func (s *Service) handleNodes(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, shard.Nodes())
}

func (s *Service) handleEdges(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	edges := shard.Edges()
	out := make([][2]int, len(edges))
	for i, e := range edges {
		out[i] = [2]int{e.U, e.V}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleMostDistantInternalNodes(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	howMany, err := queryInt(r, "how-many")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	far, err := shard.MostDistantInternalNodes(howMany)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]wire.FarNodeEntry, len(far))
	for i, f := range far {
		out[i] = wire.NewFarNodeEntry(f.NodeID, roundTo2(f.SquaredDist))
	}
	writeJSON(w, http.StatusOK, out)
}

func roundTo2(f float64) float64 {
	shifted := f * 100
	rounded := float64(int64(shifted + 0.5))
	return rounded / 100
}

func (s *Service) handleAddEdgeExternal(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	info := r.URL.Query().Get("info")
	tuples, err := parseExternalEdgeInfo(info)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	for _, t := range tuples {
		if err := shard.AddExternalEdge(t.ni, t.x, t.y, t.foreignShard, t.ne, t.distanceHint); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, "ok")
}

type externalEdgeTuple struct {
	ni, ne, foreignShard int
	x, y, distanceHint   float64
}

// parseExternalEdgeInfo parses the flat CSV of 6-tuples (ni,ne,x,y,shard,d)
// the add-edge-external endpoint accepts (§6.1).
func parseExternalEdgeInfo(info string) ([]externalEdgeTuple, error) {
	if info == "" {
		return nil, nil
	}
	parts := strings.Split(info, ",")
	if len(parts)%6 != 0 {
		return nil, dbfserr.Configuration("info must be a flat CSV of 6-tuples, got %d values", len(parts))
	}
	out := make([]externalEdgeTuple, 0, len(parts)/6)
	for i := 0; i < len(parts); i += 6 {
		ni, err1 := strconv.Atoi(parts[i])
		ne, err2 := strconv.Atoi(parts[i+1])
		x, err3 := strconv.ParseFloat(parts[i+2], 64)
		y, err4 := strconv.ParseFloat(parts[i+3], 64)
		foreignShard, err5 := strconv.Atoi(parts[i+4])
		d, err6 := strconv.ParseFloat(parts[i+5], 64)
		if err := firstNonNil(err1, err2, err3, err4, err5, err6); err != nil {
			return nil, dbfserr.Configuration("malformed external edge tuple at position %d: %v", i/6, err)
		}
		out = append(out, externalEdgeTuple{ni: ni, ne: ne, x: x, y: y, foreignShard: foreignShard, distanceHint: d})
	}
	return out, nil
}

func firstNonNil(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func parseSources(raw string) (map[int]struct{}, error) {
	if raw == "" {
		return map[int]struct{}{}, nil
	}
	parts := strings.Split(raw, ",")
	out := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, dbfserr.Configuration("sources must be a CSV of integers, got %q", raw)
		}
		out[n] = struct{}{}
	}
	return out, nil
}

func (s *Service) handleBFS(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	sources, err := parseSources(r.URL.Query().Get("sources"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.respondBFS(w, shard, sources)
}

func (s *Service) handleBFSFromCenter(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.respondBFS(w, shard, map[int]struct{}{shard.CenterNode(): {}})
}

func (s *Service) respondBFS(w http.ResponseWriter, shard *shardgraph.Shard, sources map[int]struct{}) {
	s.metrics.BFSRequestsTotal.WithLabelValues(strconv.Itoa(shard.GUID())).Inc()

	result, err := shard.BFSTreesWithRemoteNodes(sources)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	internal := make([]int, 0, len(result.InternalReached))
	for n := range result.InternalReached {
		internal = append(internal, n)
	}
	slices.Sort(internal)

	frontier := make([]wire.FrontierPair, 0, len(result.Remote))
	for foreignShard, nodes := range result.Remote {
		ids := make([]int, 0, len(nodes))
		for n := range nodes {
			ids = append(ids, n)
		}
		slices.Sort(ids)
		frontier = append(frontier, wire.FrontierPair{ForeignShard: foreignShard, Nodes: ids})
	}
	slices.SortFunc(frontier, func(a, b wire.FrontierPair) int { return a.ForeignShard - b.ForeignShard })

	writeJSON(w, http.StatusOK, wire.BFSResponse{Internal: internal, Frontier: frontier})
}

func (s *Service) handleCenterNode(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	shard, err := s.shard(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		CenterNode int `json:"centerNode"`
	}{shard.CenterNode()})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.shards))
	for id := range s.shards {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Shards []int  `json:"shards"`
	}{"ok", ids})
}
