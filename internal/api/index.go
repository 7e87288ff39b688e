package api

import (
	"net/http"

	"github.com/drive-intranet/internal/httputil"
)

// RefreshResponse is returned by /api/index/refresh
type RefreshResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

func (s *Server) handleIndexRefresh(w http.ResponseWriter, r *http.Request) {
	count, err := s.index.Refresh(r.Context(), tokenSource(r))
	if err != nil {
		respondUpstream(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, RefreshResponse{OK: true, Count: count})
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, s.index.Snapshot())
}
