package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/gyeh/atexplorer/internal/dataset"
	"github.com/gyeh/atexplorer/internal/db"
	"github.com/gyeh/atexplorer/internal/filter"
	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	hlog.FromRequest(r).Info().Str("session_id", sess.ID.String()).Msg("session created")
	respond(w, http.StatusCreated, sess.Info())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sess.Info())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil || !s.sessions.Delete(id) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadResponse is returned after a dataset is accepted.
type uploadResponse struct {
	Dataset  model.LoadSummary   `json:"dataset"`
	Cached   bool                `json:"cached"`
	Warnings []string            `json:"warnings,omitempty"`
	Options  map[string][]string `json:"options"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadLimit())
	file, header, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("multipart field \"file\" is required: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}

	b, cached, err := sess.cache.Load(header.Filename, data)
	if err != nil {
		s.fail(w, r, sess, err)
		return
	}
	s.activate(w, r, sess, b, cached)
}

// loadStored makes a dataset imported into Postgres the session's current one.
func (s *Server) loadStored(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	b, err := db.LoadBundle(r.Context(), s.pool, chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, sess, err)
		return
	}
	s.activate(w, r, sess, b, false)
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request, sess *Session, b *dataset.Bundle, cached bool) {
	key := b.SHA256 + "|" + b.Name
	p, ok := sess.lookupPrepared(key)
	if !ok {
		var err error
		p, err = pipeline.Prepare(b, s.cfg.PipelineOptions(), *hlog.FromRequest(r))
		if err != nil {
			s.fail(w, r, sess, err)
			return
		}
		sess.storePrepared(key, p)
	}

	sum := b.Summary()
	sess.setCurrent(p, &sum)
	respond(w, http.StatusOK, uploadResponse{
		Dataset:  sum,
		Cached:   cached,
		Warnings: p.Warnings,
		Options:  p.Options,
	})
}

func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	p, ok := s.current(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, p.Options)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	p, ok := s.current(w, r)
	if !ok {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := p.Report(sel, *hlog.FromRequest(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, rep)
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := db.List(r.Context(), s.pool)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list datasets failed")
		respondError(w, http.StatusInternalServerError, "list datasets failed")
		return
	}
	if list == nil {
		list = []db.DatasetInfo{}
	}
	respond(w, http.StatusOK, list)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) (*pipeline.Prepared, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	p, _ := sess.Current()
	if p == nil {
		respondError(w, http.StatusConflict, "upload a dataset first")
		return nil, false
	}
	return p, true
}

// errorBody carries the missing table names when a dataset is incomplete.
type errorBody struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

// fail maps a load or preflight failure to a status code. A rejected
// dataset also clears the session's current one.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, sess *Session, err error) {
	var (
		unsupported *dataset.UnsupportedFormatError
		missing     *pipeline.MissingRequiredTableError
		noID        *normalize.MissingIdentifierError
		ambiguous   *db.AmbiguousRefError
		tooLarge    *http.MaxBytesError
		expanded    *dataset.ArchiveTooLargeError
	)
	log := hlog.FromRequest(r)

	switch {
	case errors.As(err, &tooLarge), errors.As(err, &expanded):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, db.ErrDatasetNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.As(err, &ambiguous):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.setCurrent(nil, nil)
	switch {
	case errors.As(err, &unsupported):
		log.Warn().Err(err).Msg("unsupported upload")
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &missing):
		log.Warn().Strs("missing", missing.Missing).Msg("incomplete dataset")
		respond(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Missing: missing.Missing})
	case errors.As(err, &noID):
		log.Warn().Err(err).Msg("participant identifier missing")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("dataset load failed")
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

// parseSelection reads filters from query parameters. Field parameters
// accept canonical column names or short aliases, repeated or
// comma-separated: ?state=NSW,VIC&mmm=1.
func parseSelection(q url.Values) (filter.Selection, error) {
	sel := filter.Selection{Fields: make(map[filter.Field][]string)}
	for key, vals := range q {
		switch strings.ToLower(key) {
		case "breaches_only":
			v, err := parseBool(key, vals)
			if err != nil {
				return sel, err
			}
			sel.BreachesOnly = v
			continue
		case "degenerative_only":
			v, err := parseBool(key, vals)
			if err != nil {
				return sel, err
			}
			sel.DegenerativeOnly = v
			continue
		}

		f, ok := filter.ParseField(key)
		if !ok {
			return sel, fmt.Errorf("unknown filter %q", key)
		}
		for _, v := range vals {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					sel.Fields[f] = append(sel.Fields[f], part)
				}
			}
		}
	}
	return sel, nil
}

func parseBool(key string, vals []string) (bool, error) {
	if len(vals) == 0 || vals[0] == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(vals[0])
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}
