package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"upnd.org/internal/auth"
	"upnd.org/internal/comms"
)

type sendCommRequest struct {
	Message string                `json:"message"`
	Channel string                `json:"channel"`
	Filter  comms.RecipientFilter `json:"filter"`
}

type commResultRequest struct {
	Failed int `json:"failed"`
}

type sendCommResponse struct {
	Communication comms.Communication `json:"communication"`
	Recipients    []comms.Recipient   `json:"recipients"`
}

func (a *API) handleCommsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.sendCommunication(w, r)
	case http.MethodGet:
		a.listCommunications(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCommResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/communications/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/recipients"); ok {
		a.listCommRecipients(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if id, ok := strings.CutSuffix(path, "/result"); ok {
		a.recordCommResult(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.getCommunication(w, r, path)
}

func (a *API) sendCommunication(w http.ResponseWriter, r *http.Request) {
	principal, err := a.requirePermission(r.Context(), auth.PermSendCommunications)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req sendCommRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	comm, recipients, err := a.svc.Comms.Send(
		r.Context(), principal.Scope(), req.Message,
		comms.Channel(req.Channel), req.Filter, principal.UserID)
	if err != nil {
		handleCommError(w, r, err)
		return
	}

	a.auditEvent(r, "comms.send", map[string]any{
		"communication_id": comm.ID,
		"channel":          string(comm.Channel),
		"recipients":       comm.RecipientCount,
	})
	w.Header().Set("Location", "/v1/communications/"+comm.ID)
	writeJSON(w, http.StatusCreated, sendCommResponse{
		Communication: comm,
		Recipients:    recipients,
	})
}

func (a *API) listCommunications(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requirePermission(r.Context(), auth.PermSendCommunications); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	items, err := a.svc.Comms.List(r.Context())
	if err != nil {
		handleCommError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
		"as_of": time.Now().UTC(),
	})
}

func (a *API) getCommunication(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := a.requirePermission(r.Context(), auth.PermSendCommunications); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	comm, err := a.svc.Comms.Get(r.Context(), id)
	if err != nil {
		handleCommError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comm)
}

func (a *API) listCommRecipients(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermSendCommunications); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	items, err := a.svc.Comms.Recipients(r.Context(), id)
	if err != nil {
		handleCommError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (a *API) recordCommResult(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermSendCommunications); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req commResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	comm, err := a.svc.Comms.MarkResult(r.Context(), id, req.Failed)
	if err != nil {
		handleCommError(w, r, err)
		return
	}
	a.auditEvent(r, "comms.result", map[string]any{
		"communication_id": id,
		"status":           string(comm.Status),
		"failed":           comm.FailedCount,
	})
	writeJSON(w, http.StatusOK, comm)
}

func handleCommError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, comms.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, comms.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
