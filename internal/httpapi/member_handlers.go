package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"upnd.org/internal/audit"
	"upnd.org/internal/auth"
	"upnd.org/internal/export"
	"upnd.org/internal/member"
	"upnd.org/internal/obs"
	"upnd.org/internal/stats"
	"upnd.org/internal/stream"
)

type listMembersResponse struct {
	Items []member.Member `json:"items"`
	Count int             `json:"count"`
	AsOf  time.Time       `json:"as_of"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type bulkApproveRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type bulkApproveResponse struct {
	Approved int                 `json:"approved"`
	Failed   int                 `json:"failed"`
	Results  []member.BulkResult `json:"results"`
}

func (a *API) handleMembersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.registerMember(w, r)
	case http.MethodGet:
		a.listMembers(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleMemberResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/members/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/status"); ok {
		a.setMemberStatus(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if id, ok := strings.CutSuffix(path, "/advance"); ok {
		a.advanceMember(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if id, ok := strings.CutSuffix(path, "/cards"); ok {
		a.listMemberCards(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if id, ok := strings.CutSuffix(path, "/cases"); ok {
		a.listMemberCases(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getMember(w, r, path)
	case http.MethodPut:
		a.updateMember(w, r, path)
	case http.MethodDelete:
		a.deleteMember(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) registerMember(w http.ResponseWriter, r *http.Request) {
	var reg member.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := a.svc.Members.Register(r.Context(), reg)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}

	obs.CountRegistration()
	if a.stream != nil {
		a.stream.Publish(stream.Registered(
			m.Jurisdiction.Province, m.Jurisdiction.District, string(m.Status), m.RegisteredAt))
	}
	a.auditEvent(r, "member.register", map[string]any{
		"member_id":     m.ID,
		"membership_id": m.MembershipID,
		"province":      m.Jurisdiction.Province,
	})

	w.Header().Set("Location", "/v1/members/"+m.ID)
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}

	filter := member.Filter{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	items, err := a.svc.Members.List(r.Context(), principal.Scope(), filter)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listMembersResponse{
		Items: items,
		Count: len(items),
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) getMember(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	m, err := a.svc.Members.Get(r.Context(), id)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	if !principal.Scope().Allows(m) {
		// Out-of-scope records are indistinguishable from absent ones.
		writeError(w, r, http.StatusNotFound, "member not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) updateMember(w http.ResponseWriter, r *http.Request, id string) {
	principal, err := a.requirePermission(r.Context(), auth.PermManageMembers)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if !a.memberInScope(r, principal, id) {
		writeError(w, r, http.StatusNotFound, "member not found")
		return
	}

	var reg member.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := a.svc.Members.Update(r.Context(), id, reg)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	a.auditEvent(r, "member.update", map[string]any{"member_id": id})
	writeJSON(w, http.StatusOK, m)
}

func (a *API) deleteMember(w http.ResponseWriter, r *http.Request, id string) {
	principal, err := a.requirePermission(r.Context(), auth.PermManageMembers)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if !a.memberInScope(r, principal, id) {
		writeError(w, r, http.StatusNotFound, "member not found")
		return
	}
	if err := a.svc.Members.Delete(r.Context(), id); err != nil {
		handleMemberError(w, r, err)
		return
	}
	a.auditEvent(r, "member.delete", map[string]any{"member_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (a *API) setMemberStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, err := a.requirePermission(r.Context(), auth.PermApproveMembers)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if !a.memberInScope(r, principal, id) {
		writeError(w, r, http.StatusNotFound, "member not found")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := a.svc.Members.SetStatus(r.Context(), id, member.Status(req.Status))
	if err != nil {
		handleMemberError(w, r, err)
		return
	}

	obs.CountStatusChange(string(m.Status))
	if a.stream != nil && m.Status == member.StatusApproved {
		evt := stream.Registered(m.Jurisdiction.Province, m.Jurisdiction.District, string(m.Status), m.UpdatedAt)
		evt.Kind = "approved"
		a.stream.Publish(evt)
	}
	a.auditEvent(r, "member.status", map[string]any{
		"member_id": id,
		"status":    string(m.Status),
	})
	writeJSON(w, http.StatusOK, m)
}

func (a *API) advanceMember(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, err := a.requirePermission(r.Context(), auth.PermApproveMembers)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if !a.memberInScope(r, principal, id) {
		writeError(w, r, http.StatusNotFound, "member not found")
		return
	}
	m, err := a.svc.Members.Advance(r.Context(), id)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	obs.CountStatusChange(string(m.Status))
	a.auditEvent(r, "member.advance", map[string]any{
		"member_id": id,
		"status":    string(m.Status),
	})
	writeJSON(w, http.StatusOK, m)
}

func (a *API) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, err := a.requirePermission(r.Context(), auth.PermApproveMembers)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	var req bulkApproveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.MemberIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "member_ids is required")
		return
	}
	if len(req.MemberIDs) > 500 {
		writeError(w, r, http.StatusBadRequest, "at most 500 members per request")
		return
	}

	// The same visibility rule as the single-member routes: ids outside the
	// caller's scope fail per-item as not found.
	inScope := make([]string, 0, len(req.MemberIDs))
	blocked := make(map[string]bool)
	for _, id := range req.MemberIDs {
		if a.memberInScope(r, principal, id) {
			inScope = append(inScope, id)
		} else {
			blocked[id] = true
		}
	}

	approvedResults := a.svc.Members.BulkApprove(r.Context(), inScope)
	results := make([]member.BulkResult, 0, len(req.MemberIDs))
	next := 0
	for _, id := range req.MemberIDs {
		if blocked[id] {
			results = append(results, member.BulkResult{ID: id, Error: member.ErrNotFound.Error()})
			continue
		}
		results = append(results, approvedResults[next])
		next++
	}
	approved := 0
	for _, res := range results {
		if res.Error == "" {
			approved++
			obs.CountStatusChange(string(member.StatusApproved))
		}
	}
	a.auditEvent(r, "member.bulk_approve", map[string]any{
		"requested": len(req.MemberIDs),
		"approved":  approved,
	})
	writeJSON(w, http.StatusOK, bulkApproveResponse{
		Approved: approved,
		Failed:   len(results) - approved,
		Results:  results,
	})
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, err := a.requirePermission(r.Context(), auth.PermExportData)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	filter := member.Filter{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	members, err := a.svc.Members.List(r.Context(), principal.Scope(), filter)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}
	now := time.Now().UTC()
	var (
		payload     []byte
		contentType string
		filename    string
	)
	switch format {
	case "csv":
		payload, err = export.CSV(members)
		contentType = "text/csv; charset=utf-8"
		filename = "members.csv"
	case "json":
		payload, err = export.JSON(members, now)
		contentType = "application/json; charset=utf-8"
		filename = "members.json"
	case "html":
		payload, err = export.HTML(members, now)
		contentType = "text/html; charset=utf-8"
		filename = "members.html"
	default:
		writeError(w, r, http.StatusBadRequest, "format must be csv, json or html")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	a.auditEvent(r, "member.export", map[string]any{
		"format":  format,
		"records": len(members),
	})
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (a *API) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, err := a.requirePermission(r.Context(), auth.PermViewStatistics)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	members, err := a.svc.Members.List(r.Context(), principal.Scope(), member.Filter{})
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(members, time.Now().UTC()))
}

func (a *API) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	members, err := a.svc.Members.List(r.Context(), principal.Scope(), member.Filter{})
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	cases, err := a.svc.Discipline.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	now := time.Now().UTC()
	st := stats.Compute(members, now)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": stats.Notifications(st, members, cases, principal, now),
		"as_of": now,
	})
}

// memberInScope loads the member and checks caller visibility. Missing
// members return true so handlers surface the service's own not-found error.
func (a *API) memberInScope(r *http.Request, principal auth.Principal, id string) bool {
	m, err := a.svc.Members.Get(r.Context(), id)
	if err != nil {
		return true
	}
	return principal.Scope().Allows(m)
}

func (a *API) auditEvent(r *http.Request, event string, fields map[string]any) {
	_ = audit.LogEvent(r.Context(), event, fields)
}

func handleMemberError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, member.ErrValidation), errors.Is(err, member.ErrUnknownStatus):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, member.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, member.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
