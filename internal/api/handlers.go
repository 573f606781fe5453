package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contriblens/contriblens/pkg/export"
	"github.com/contriblens/contriblens/pkg/github"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing q parameter"))
		return
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	client := s.clientFor(s.requestToken(r))
	repos, err := client.SearchRepos(r.Context(), query, perPage)
	if err != nil {
		writeError(w, httpStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": repos,
		"quota": client.Quota().Snapshot(),
	})
}

// extractContributors runs extraction and, when requested, enrichment for a
// contributors request. Both handlers below share it.
func (s *Server) extractContributors(r *http.Request) (string, []github.Contributor, *github.Client, error) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	client := s.clientFor(s.requestToken(r))

	contribs, err := client.Contributors(r.Context(), owner, repo, nil)
	if err != nil {
		return "", nil, nil, err
	}

	if v := r.URL.Query().Get("enrich"); v == "1" || v == "true" {
		contribs, err = client.Enrich(r.Context(), contribs, nil, nil)
		if err != nil {
			return "", nil, nil, err
		}
	}
	return owner + "/" + repo, contribs, client, nil
}

func (s *Server) handleContributors(w http.ResponseWriter, r *http.Request) {
	repoName, contribs, client, err := s.extractContributors(r)
	if err != nil {
		writeError(w, httpStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"repository":   repoName,
		"contributors": contribs,
		"count":        len(contribs),
		"quota":        client.Quota().Snapshot(),
	})
}

func (s *Server) handleContributorsCSV(w http.ResponseWriter, r *http.Request) {
	repoName, contribs, _, err := s.extractContributors(r)
	if err != nil {
		writeError(w, httpStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", chi.URLParam(r, "repo")+"-contributors.csv"))
	// Same byte shape as the CLI export: newline-terminated.
	fmt.Fprintln(w, export.ContributorsCSV(contribs, repoName))
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	repoHint := r.URL.Query().Get("repo")

	client := s.clientFor(s.requestToken(r))
	email, err := client.FindEmail(r.Context(), login, repoHint)
	if err != nil {
		writeError(w, httpStatus(err), err)
		return
	}

	// "Not found" is a successful lookup with a null email, not an error.
	var body struct {
		Email *string `json:"email"`
	}
	if email != "" {
		body.Email = &email
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
