package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mlindahl/layernet/pkg/cache"
	"github.com/mlindahl/layernet/pkg/engine"
	"github.com/mlindahl/layernet/pkg/errors"
	"github.com/mlindahl/layernet/pkg/layout"
	"github.com/mlindahl/layernet/pkg/netio"
	"github.com/mlindahl/layernet/pkg/network"
	"github.com/mlindahl/layernet/pkg/store"
)

// CompileReport is the response body of POST /compile.
type CompileReport struct {
	Name        string     `json:"name,omitempty"`
	InputBanks  []string   `json:"input_banks"`
	OutputBanks []string   `json:"output_banks"`
	Shapes      []string   `json:"shapes"`
	Levels      [][]string `json:"levels"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeGraph(w, r)
	if !ok {
		return
	}
	rec, err := s.store.Put(r.Context(), g)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeGraph(w, r)
	if !ok {
		return
	}
	rec, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), g)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var g netio.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode body"))
		return
	}

	net, err := netio.ToNetwork(g)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := net.Compile(engine.NewSymbolic()); err != nil {
		s.writeError(w, err)
		return
	}

	shapes := net.Model().OutputShapes()
	report := CompileReport{
		Name:        net.Name(),
		InputBanks:  net.InputBanks(),
		OutputBanks: net.OutputBanks(),
		Levels:      net.LevelOrdering(),
	}
	for _, sh := range shapes {
		report.Shapes = append(report.Shapes, sh.String())
	}
	writeJSON(w, http.StatusOK, report)
}

// handleLayoutOneShot computes a layout for a graph posted in the request
// body, without storing it.
func (s *Server) handleLayoutOneShot(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeGraph(w, r)
	if !ok {
		return
	}
	net, _, err := s.restore(g)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout.Compute(net))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	net, raw, err := s.restore(rec.Graph)
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := s.keyer.LayoutKey(cache.Hash(raw), cache.LayoutKeyOpts{})
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		writeRaw(w, http.StatusOK, "application/json", data)
		return
	}

	data, err := json.Marshal(layout.Compute(net))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cache.Set(r.Context(), key, data, 0); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	}
	writeRaw(w, http.StatusOK, "application/json", data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "TB"
	}
	detailed := r.URL.Query().Get("detailed") == "true"

	contentType, ok := renderContentTypes[format]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q", format))
		return
	}

	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	net, raw, err := s.restore(rec.Graph)
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := s.keyer.ArtifactKey(cache.Hash(raw), cache.ArtifactKeyOpts{
		Format:    format,
		Direction: direction,
		Detailed:  detailed,
	})
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		writeRaw(w, http.StatusOK, contentType, data)
		return
	}

	dot := layout.ToDOT(layout.Compute(net), layout.Options{Direction: direction, Detailed: detailed})

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = layout.RenderSVG(r.Context(), dot)
	case "png":
		data, err = layout.RenderPNG(r.Context(), dot)
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format))
		return
	}

	if format != "dot" {
		if err := s.cache.Set(r.Context(), key, data, 0); err != nil {
			s.logger.Warn("cache write failed", "err", err)
		}
	}
	writeRaw(w, http.StatusOK, contentType, data)
}

var renderContentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"dot": "text/vnd.graphviz",
}

// decodeGraph parses and structurally validates a request body. Validation
// goes through a full network build so stored documents are always loadable.
func (s *Server) decodeGraph(w http.ResponseWriter, r *http.Request) (netio.Graph, bool) {
	var g netio.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode body"))
		return netio.Graph{}, false
	}
	net, err := netio.ToNetwork(g)
	if err != nil {
		s.writeError(w, err)
		return netio.Graph{}, false
	}
	if err := net.Validate(); err != nil {
		s.writeError(w, err)
		return netio.Graph{}, false
	}
	return g, true
}

// restore rebuilds a network and returns the canonical bytes used for
// cache keys.
func (s *Server) restore(g netio.Graph) (*network.Network, []byte, error) {
	net, err := netio.ToNetwork(g)
	if err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, nil, err
	}
	return net, raw, nil
}

// errorBody is the JSON shape of error responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}

	var body errorBody
	body.Error.Code = string(code)
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeNetworkNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidShape, errors.ErrCodeInvalidManifest,
		errors.ErrCodeDuplicateLayer, errors.ErrCodeUnknownLayer, errors.ErrCodeCycle,
		errors.ErrCodeUnconnectedLayer, errors.ErrCodeEmptyNetwork, errors.ErrCodeMergeIncompatible:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
