package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sersmask/pkg/batch"
	"github.com/matzehuels/sersmask/pkg/buildinfo"
	"github.com/matzehuels/sersmask/pkg/cache"
	"github.com/matzehuels/sersmask/pkg/catalog"
	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/httputil"
	"github.com/matzehuels/sersmask/pkg/pipeline"
	"github.com/matzehuels/sersmask/pkg/render"
)

// Response headers set by the build and plan endpoints.
const (
	HeaderDesignHash = "X-Design-Hash"
	HeaderCache      = "X-Cache"
	HeaderRunID      = "X-Run-ID"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"build":   buildinfo.Get(),
		"catalog": s.catalog != nil,
	})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	opts, err := buildOptions(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	b, err := s.readBatch(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), b, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	format := render.Format(opts.Formats[0])
	if s.catalog != nil {
		run, err := s.record(r, b, res, opts.Formats)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		w.Header().Set(HeaderRunID, run.ID)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Design.Name+format.Ext()))
	w.Header().Set(HeaderDesignHash, res.DesignHash)
	w.Header().Set(HeaderCache, cacheStatus(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Artifacts[string(format)]); err != nil {
		s.logger.Warn("write artifact", "error", err)
	}
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	b, err := s.readBatch(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	refresh, err := boolParam(r, "refresh")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	data, hit, err := s.runner.PlanJSON(r.Context(), b, pipeline.Options{Refresh: refresh})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderCache, cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write plan", "error", err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireCatalog(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, fmt.Sprintf("limit: want a non-negative integer, got %q", v))
			return
		}
		limit = n
	}

	runs, err := s.catalog.Runs(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if runs == nil {
		runs = []catalog.Run{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireCatalog(w) {
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.catalog.Run(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	wgs, err := s.catalog.Waveguides(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"run": run, "waveguides": wgs})
}

func (s *Server) requireCatalog(w http.ResponseWriter) bool {
	if s.catalog == nil {
		httputil.WriteError(w, errors.New(errors.ErrCodeUnsupported, "run catalog is not enabled"))
		return false
	}
	return true
}

// readBatch decodes the request body as a JSON batch.
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) (*batch.Batch, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return batch.Parse(data, batch.FormatJSON)
}

func (s *Server) record(r *http.Request, b *batch.Batch, res *pipeline.Result, formats []string) (catalog.Run, error) {
	batchHash, err := cache.HashJSON(b)
	if err != nil {
		return catalog.Run{}, errors.Wrap(errors.ErrCodeInternal, err, "hash batch")
	}
	return s.catalog.Record(r.Context(), res.Design, catalog.RunMeta{
		BatchHash: batchHash,
		Formats:   formats,
	})
}

// buildOptions reads the render options of a build request from its query.
// Exactly one format is built per request; the rest is validated by the
// runner.
func buildOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	name := q.Get("format")
	if name == "" {
		name = pipeline.DefaultFormat
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{Formats: []string{string(format)}}
	if v := q.Get("layers"); v != "" {
		opts.Layers = strings.Split(v, ",")
	}
	if v := q.Get("png_width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "want a number, got %q", v).WithField("png_width")
		}
		opts.PNGWidth = width
	}

	for name, dst := range map[string]*bool{
		"labels":   &opts.Labels,
		"detailed": &opts.Detailed,
		"polygons": &opts.Polygons,
		"refresh":  &opts.Refresh,
	} {
		if *dst, err = boolParam(r, name); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "want a boolean, got %q", v).WithField(name)
	}
	return b, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
