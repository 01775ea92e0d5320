package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

const maxBodyBytes = 64 << 10

type linkRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type listResponse struct {
	Query string        `json:"query,omitempty"`
	Count int           `json:"count"`
	Links []domain.Link `json:"links"`
}

type accessResponse struct {
	Recorded bool         `json:"recorded"`
	Link     *domain.Link `json:"link,omitempty"`
}

// ListLinks returns the visible links matching ?q=, most recently used first
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		visible := d.Links.List(query)
		writeJSON(w, http.StatusOK, listResponse{
			Query: query,
			Count: len(visible),
			Links: visible,
		})
	}
}

func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := d.Links.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeLinkRequest(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		link, err := d.Links.Create(r.Context(), req.URL, req.Description)
		if errors.Is(err, domain.ErrDuplicateURL) {
			w.Header().Set("Location", "/api/links/"+link.ID)
		}
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, link)
	}
}

func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeLinkRequest(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		link, err := d.Links.Edit(r.Context(), chi.URLParam(r, "id"), req.URL, req.Description)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Links.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AccessLink records a selection made by a client that opened the link
// itself. Unknown or deleted ids are not an error.
func AccessLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		link, found, err := d.Links.Access(r.Context(), id)
		if !found {
			d.Logger.Debug("access on unknown link ignored", logger.String("id", id))
			writeJSON(w, http.StatusOK, accessResponse{Recorded: false})
			return
		}
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, accessResponse{Recorded: true, Link: &link})
	}
}

func decodeLinkRequest(w http.ResponseWriter, r *http.Request) (linkRequest, error) {
	var req linkRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}
