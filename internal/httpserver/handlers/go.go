package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

// Go redirects to the link named by ?q= and records the access when exactly
// one link matches. Several matches answer 300 with the ranked candidates and
// record nothing. No match (or an empty query) falls back to FallbackURL when set.
func Go(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		if query == "" {
			d.Logger.Debug("empty query, redirecting to fallback")
			fallback(w, r, d)
			return
		}

		res, err := d.Links.Jump(r.Context(), query)
		switch {
		case len(res.Candidates) == 0:
			d.Logger.Info("no matching link found",
				logger.String("query", query))
			fallback(w, r, d)
			return
		case !res.Followed:
			d.Logger.Info("ambiguous query",
				logger.String("query", query),
				logger.Int("candidates", len(res.Candidates)))
			writeJSON(w, http.StatusMultipleChoices, listResponse{
				Query: query,
				Count: len(res.Candidates),
				Links: res.Candidates,
			})
			return
		}
		if err != nil {
			// The access is recorded in memory; the redirect still happens
			d.Logger.Warn("access not persisted",
				logger.String("id", res.Link.ID),
				logger.Error(err))
		}

		d.Logger.Info("resolved link",
			logger.String("query", query),
			logger.String("id", res.Link.ID),
			logger.String("url", res.Link.URL))

		http.Redirect(w, r, domain.AbsoluteURL(res.Link.URL), http.StatusFound)
	}
}

func fallback(w http.ResponseWriter, r *http.Request, d deps.Deps) {
	if d.FallbackURL == "" {
		writeError(w, http.StatusNotFound, "no matching link")
		return
	}
	http.Redirect(w, r, d.FallbackURL, http.StatusFound)
}
