package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"upnd.org/internal/auth"
	"upnd.org/internal/discipline"
)

type caseStatusRequest struct {
	Status string `json:"status"`
}

type caseEntryRequest struct {
	Text string `json:"text"`
}

type listCasesResponse struct {
	Items []discipline.Case `json:"items"`
	Count int               `json:"count"`
	AsOf  time.Time         `json:"as_of"`
}

func (a *API) handleCasesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.openCase(w, r)
	case http.MethodGet:
		a.listCases(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCaseResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/disciplinary/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/status"); ok {
		a.setCaseStatus(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	for _, sub := range []string{"actions", "evidence", "notes"} {
		if id, ok := strings.CutSuffix(path, "/"+sub); ok {
			a.appendCaseEntry(w, r, strings.TrimSuffix(id, "/"), sub)
			return
		}
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.getCase(w, r, path)
}

func (a *API) openCase(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requirePermission(r.Context(), auth.PermManageDisciplinary); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var report discipline.Report
	if err := decodeJSON(w, r, &report); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.svc.Discipline.Open(r.Context(), report)
	if err != nil {
		handleCaseError(w, r, err)
		return
	}
	a.auditEvent(r, "discipline.open", map[string]any{
		"case_id":   c.ID,
		"member_id": c.MemberID,
		"severity":  string(c.Severity),
	})
	w.Header().Set("Location", "/v1/disciplinary/"+c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listCases(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requirePermission(r.Context(), auth.PermManageDisciplinary); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var (
		items []discipline.Case
		err   error
	)
	if memberID := strings.TrimSpace(r.URL.Query().Get("member_id")); memberID != "" {
		items, err = a.svc.Discipline.ListByMember(r.Context(), memberID)
	} else {
		items, err = a.svc.Discipline.List(r.Context())
	}
	if err != nil {
		handleCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listCasesResponse{
		Items: items,
		Count: len(items),
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) getCase(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := a.requirePermission(r.Context(), auth.PermManageDisciplinary); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	c, err := a.svc.Discipline.Get(r.Context(), id)
	if err != nil {
		handleCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) setCaseStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageDisciplinary); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req caseStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.svc.Discipline.SetStatus(r.Context(), id, discipline.Status(req.Status))
	if err != nil {
		handleCaseError(w, r, err)
		return
	}
	a.auditEvent(r, "discipline.status", map[string]any{
		"case_id": id,
		"status":  string(c.Status),
	})
	writeJSON(w, http.StatusOK, c)
}

func (a *API) appendCaseEntry(w http.ResponseWriter, r *http.Request, id, kind string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, err := a.requirePermission(r.Context(), auth.PermManageDisciplinary)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req caseEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	author := principal.FullName
	if author == "" {
		author = principal.Email
	}
	var c discipline.Case
	switch kind {
	case "actions":
		c, err = a.svc.Discipline.AddAction(r.Context(), id, author, req.Text)
	case "evidence":
		c, err = a.svc.Discipline.AddEvidence(r.Context(), id, author, req.Text)
	default:
		c, err = a.svc.Discipline.AddNote(r.Context(), id, author, req.Text)
	}
	if err != nil {
		handleCaseError(w, r, err)
		return
	}
	a.auditEvent(r, "discipline."+kind, map[string]any{"case_id": id})
	writeJSON(w, http.StatusOK, c)
}

func (a *API) listMemberCases(w http.ResponseWriter, r *http.Request, memberID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageDisciplinary); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	items, err := a.svc.Discipline.ListByMember(r.Context(), memberID)
	if err != nil {
		handleCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listCasesResponse{
		Items: items,
		Count: len(items),
		AsOf:  time.Now().UTC(),
	})
}

func handleCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, discipline.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, discipline.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
