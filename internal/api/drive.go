package api

import (
	"errors"
	"net/http"

	"github.com/drive-intranet/internal/auth"
	"github.com/drive-intranet/internal/drive"
	"github.com/drive-intranet/internal/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// SearchResponse is returned by GET /api/drive/search
type SearchResponse struct {
	Files []*drive.File `json:"files"`
}

// PreviewResponse is returned by GET /api/drive/files/{id}/preview
type PreviewResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Markdown string `json:"markdown"`
	Excerpt  string `json:"excerpt"`
}

func tokenSource(r *http.Request) oauth2.TokenSource {
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		return sess.TokenSource()
	}
	return nil
}

// respondUpstream echoes an upstream failure with its original status and text
func respondUpstream(w http.ResponseWriter, err error) {
	var upstream *drive.UpstreamError
	if errors.As(err, &upstream) {
		httputil.RespondError(w, upstream.Status, upstream.Error())
		return
	}
	logrus.Errorf("Upstream request failed: %v", err)
	httputil.RespondError(w, http.StatusBadGateway, err.Error())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := drive.SearchQuery{
		Text:     query.Get("q"),
		Type:     query.Get("type"),
		NameOnly: query.Get("nameOnly") == "1" || query.Get("nameOnly") == "true",
	}
	if err := search.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	files, err := s.drive.List(r.Context(), tokenSource(r), search.Build())
	if err != nil {
		respondUpstream(w, err)
		return
	}

	filtered := s.index.Filter(files)
	logrus.Debugf("Search %q matched %d files, %d inside the root folder", search.Text, len(files), len(filtered))

	httputil.RespondJSON(w, http.StatusOK, SearchResponse{Files: filtered})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	raw, err := s.drive.QueryActivity(r.Context(), tokenSource(r), s.index.RootID(), s.cfg.Drive.ActivityPageSize)
	if err != nil {
		respondUpstream(w, err)
		return
	}
	httputil.RespondRaw(w, http.StatusOK, raw)
}

// fileInSubtree fetches a file and hides anything outside the root folder
func (s *Server) fileInSubtree(w http.ResponseWriter, r *http.Request) (*drive.File, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing file id")
		return nil, false
	}

	file, err := s.drive.Get(r.Context(), tokenSource(r), id)
	if err != nil {
		respondUpstream(w, err)
		return nil, false
	}
	if !s.index.Contains(file) {
		httputil.RespondError(w, http.StatusNotFound, "Not found")
		return nil, false
	}
	return file, true
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	file, ok := s.fileInSubtree(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, ok := s.fileInSubtree(w, r)
	if !ok {
		return
	}

	doc, err := s.drive.ExportDocument(r.Context(), tokenSource(r), file)
	if errors.Is(err, drive.ErrNotExportable) {
		httputil.RespondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	if err != nil {
		respondUpstream(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, PreviewResponse{
		ID:       file.ID,
		Name:     file.Name,
		Markdown: doc.Markdown,
		Excerpt:  doc.Excerpt,
	})
}
