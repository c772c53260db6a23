// Package handler serves the workflow run endpoints under
// /repos/{owner}/{name}/actions.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	"mockforge/internal/query"
	repodomain "mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	"mockforge/internal/run/domain"
	runrepo "mockforge/internal/run/repository"
)

// Handler serves workflow runs, their logs, and artifacts.
type Handler struct {
	runs  runrepo.Repository
	repos reporepo.Repository
}

// New returns a Handler.
func New(runs runrepo.Repository, repos reporepo.Repository) *Handler {
	return &Handler{runs: runs, repos: repos}
}

// Routes registers the run endpoints on r (authenticated).
func (h *Handler) Routes(r chi.Router) {
	r.Get("/repos/{owner}/{name}/actions/runs", h.list)
	r.Get("/repos/{owner}/{name}/actions/runs/{id}", h.get)
	r.Post("/repos/{owner}/{name}/actions/runs/{id}/cancel", h.cancel)
	r.Post("/repos/{owner}/{name}/actions/runs/{id}/rerun", h.rerun)
	r.Get("/repos/{owner}/{name}/actions/runs/{id}/logs", h.logs)
	r.Get("/repos/{owner}/{name}/actions/runs/{id}/artifacts", h.artifacts)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rp, err := h.repoFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	all, err := h.runs.ListByRepo(r.Context(), rp.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*domain.WorkflowRun) bool
	if s := q.Get("status"); s != "" {
		preds = append(preds, func(run *domain.WorkflowRun) bool { return string(run.Status) == strings.ToLower(s) })
	}
	if b := q.Get("branch"); b != "" {
		preds = append(preds, func(run *domain.WorkflowRun) bool { return run.HeadBranch == b })
	}
	if e := q.Get("event"); e != "" {
		preds = append(preds, func(run *domain.WorkflowRun) bool { return run.Event == e })
	}
	filtered := query.Filter(all, preds...)

	// Newest first.
	query.SortStable(filtered, func(a, b *domain.WorkflowRun) bool { return a.Number > b.Number })

	page, total := query.Paginate(filtered, query.ParsePage(q))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"workflow_runs": page,
		"total_count":   total,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	run, err := h.runFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"workflow_run": run})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	run, err := h.runFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	updated, err := h.runs.Update(r.Context(), run.ID, func(cur *domain.WorkflowRun) (*domain.WorkflowRun, error) {
		if cur.Done() {
			return nil, apperrors.Conflict("run already completed")
		}
		cur.Status = domain.StatusCompleted
		cur.Conclusion = domain.ConclusionCancelled
		for i := range cur.Jobs {
			if cur.Jobs[i].Status != domain.StatusCompleted {
				cur.Jobs[i].Status = domain.StatusCompleted
				cur.Jobs[i].Conclusion = domain.ConclusionCancelled
			}
			for j := range cur.Jobs[i].Steps {
				if cur.Jobs[i].Steps[j].Status != domain.StatusCompleted {
					cur.Jobs[i].Steps[j].Status = domain.StatusCompleted
					cur.Jobs[i].Steps[j].Conclusion = domain.ConclusionCancelled
				}
			}
		}
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"workflow_run": updated})
}

func (h *Handler) rerun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	updated, err := h.runs.Update(r.Context(), run.ID, func(cur *domain.WorkflowRun) (*domain.WorkflowRun, error) {
		if !cur.Done() {
			return nil, apperrors.Conflict("run is still in progress")
		}
		cur.Status = domain.StatusQueued
		cur.Conclusion = ""
		for i := range cur.Jobs {
			cur.Jobs[i].Status = domain.StatusQueued
			cur.Jobs[i].Conclusion = ""
			for j := range cur.Jobs[i].Steps {
				cur.Jobs[i].Steps[j].Status = domain.StatusQueued
				cur.Jobs[i].Steps[j].Conclusion = ""
			}
		}
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"workflow_run": updated})
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	run, err := h.runFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	lines, next, err := h.runs.ReadLogs(r.Context(), run.ID, offset)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"lines":       lines,
		"next_offset": next,
		"in_progress": !run.Done(),
	})
}

func (h *Handler) artifacts(w http.ResponseWriter, r *http.Request) {
	run, err := h.runFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"artifacts":   run.Artifacts,
		"total_count": len(run.Artifacts),
	})
}

func (h *Handler) repoFromPath(r *http.Request) (*repodomain.Repository, error) {
	fullName := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
	rp, err := h.repos.GetByFullName(r.Context(), fullName)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, apperrors.NotFound("repository")
	}
	return rp, nil
}

func (h *Handler) runFromPath(r *http.Request) (*domain.WorkflowRun, error) {
	rp, err := h.repoFromPath(r)
	if err != nil {
		return nil, err
	}
	run, err := h.runs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if run == nil || run.RepoID != rp.ID {
		return nil, apperrors.NotFound("workflow run")
	}
	return run, nil
}
