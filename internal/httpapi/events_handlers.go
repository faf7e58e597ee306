package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"upnd.org/internal/auth"
	"upnd.org/internal/events"
)

type eventStatusRequest struct {
	Status string `json:"status"`
}

type rsvpRequest struct {
	MemberID string `json:"member_id"`
	Response string `json:"response"`
}

type listEventsResponse struct {
	Items []events.Event `json:"items"`
	Count int            `json:"count"`
	AsOf  time.Time      `json:"as_of"`
}

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createEvent(w, r)
	case http.MethodGet:
		a.listEvents(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/events/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/status"); ok {
		a.setEventStatus(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if id, ok := strings.CutSuffix(path, "/rsvps"); ok {
		a.handleRSVPs(w, r, strings.TrimSuffix(id, "/"))
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
	a.getEvent(w, r, path)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requirePermission(r.Context(), auth.PermManageEvents); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var draft events.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e, err := a.svc.Events.Create(r.Context(), draft)
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	a.auditEvent(r, "event.create", map[string]any{
		"event_id": e.ID,
		"title":    e.Title,
	})
	w.Header().Set("Location", "/v1/events/"+e.ID)
	writeJSON(w, http.StatusCreated, e)
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	items, err := a.svc.Events.List(r.Context())
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEventsResponse{
		Items: items,
		Count: len(items),
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	e, err := a.svc.Events.Get(r.Context(), id)
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (a *API) setEventStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageEvents); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req eventStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e, err := a.svc.Events.SetStatus(r.Context(), id, events.Status(req.Status))
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	a.auditEvent(r, "event.status", map[string]any{
		"event_id": id,
		"status":   string(e.Status),
	})
	writeJSON(w, http.StatusOK, e)
}

func (a *API) handleRSVPs(w http.ResponseWriter, r *http.Request, eventID string) {
	switch r.Method {
	case http.MethodPost:
		a.respondToEvent(w, r, eventID)
	case http.MethodGet:
		a.listRSVPs(w, r, eventID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) respondToEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req rsvpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rsvp, err := a.svc.Events.Respond(r.Context(), eventID, req.MemberID, events.Response(req.Response))
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	a.auditEvent(r, "event.rsvp", map[string]any{
		"event_id":  eventID,
		"member_id": req.MemberID,
		"response":  string(rsvp.Response),
	})
	writeJSON(w, http.StatusOK, rsvp)
}

func (a *API) listRSVPs(w http.ResponseWriter, r *http.Request, eventID string) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	items, err := a.svc.Events.RSVPs(r.Context(), eventID)
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func handleEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, events.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
