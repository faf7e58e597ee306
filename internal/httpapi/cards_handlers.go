package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"upnd.org/internal/auth"
	"upnd.org/internal/cards"
)

type issueCardRequest struct {
	MemberID string `json:"member_id"`
}

func (a *API) handleCardsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageCards); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req issueCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	card, err := a.svc.Cards.Issue(r.Context(), strings.TrimSpace(req.MemberID))
	if err != nil {
		handleCardError(w, r, err)
		return
	}
	a.auditEvent(r, "card.issue", map[string]any{
		"card_id":     card.ID,
		"card_number": card.CardNumber,
		"member_id":   card.MemberID,
	})
	w.Header().Set("Location", "/v1/cards/"+card.ID)
	writeJSON(w, http.StatusCreated, card)
}

func (a *API) handleCardResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/cards/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/revoke"); ok {
		a.revokeCard(w, r, strings.TrimSuffix(id, "/"))
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
	if _, err := a.requirePermission(r.Context(), auth.PermManageCards); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	card, err := a.svc.Cards.Get(r.Context(), path)
	if err != nil {
		handleCardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (a *API) revokeCard(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageCards); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	card, err := a.svc.Cards.Revoke(r.Context(), id)
	if err != nil {
		handleCardError(w, r, err)
		return
	}
	a.auditEvent(r, "card.revoke", map[string]any{"card_id": id})
	writeJSON(w, http.StatusOK, card)
}

func (a *API) handleExpireDue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageCards); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	n, err := a.svc.Cards.ExpireDue(r.Context())
	if err != nil {
		handleCardError(w, r, err)
		return
	}
	a.auditEvent(r, "card.expire_due", map[string]any{"expired": n})
	writeJSON(w, http.StatusOK, map[string]any{"expired": n})
}

func (a *API) listMemberCards(w http.ResponseWriter, r *http.Request, memberID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermManageCards); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	items, err := a.svc.Cards.ListByMember(r.Context(), memberID)
	if err != nil {
		handleCardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func handleCardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cards.ErrNotEligible):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, cards.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
