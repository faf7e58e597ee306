package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"upnd.org/api/spec"
	"upnd.org/internal/auth"
	"upnd.org/internal/cards"
	"upnd.org/internal/comms"
	"upnd.org/internal/discipline"
	"upnd.org/internal/events"
	"upnd.org/internal/member"
	"upnd.org/internal/obs"
	"upnd.org/internal/stream"
)

// ReadyProbe checks readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Services bundles the domain services the HTTP layer fronts.
type Services struct {
	Members    *member.Service
	Discipline *discipline.Service
	Events     *events.Service
	Comms      *comms.Service
	Cards      *cards.Service
	Auth       *auth.Service
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	svc        Services
	stream     *stream.Stream

	rateBurst  int
	ratePerSec int
}

// New wires all routes over the given services.
func New(rp ReadyProbe, version string, svc Services, st *stream.Stream) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		svc:        svc,
		stream:     st,
		rateBurst:  40,
		ratePerSec: 20,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// Auth
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)

	// Members and derived views
	a.mux.HandleFunc("/v1/members", a.handleMembersCollection)
	a.mux.HandleFunc("/v1/members/", a.handleMemberResource)
	a.mux.HandleFunc("/v1/members/bulk-approve", a.handleBulkApprove)
	a.mux.HandleFunc("/v1/members/export", a.handleExport)
	a.mux.HandleFunc("/v1/statistics", a.handleStatistics)
	a.mux.HandleFunc("/v1/notifications", a.handleNotifications)

	// Disciplinary cases
	a.mux.HandleFunc("/v1/disciplinary", a.handleCasesCollection)
	a.mux.HandleFunc("/v1/disciplinary/", a.handleCaseResource)

	// Events and RSVPs
	a.mux.HandleFunc("/v1/events", a.handleEventsCollection)
	a.mux.HandleFunc("/v1/events/", a.handleEventResource)

	// Bulk communications
	a.mux.HandleFunc("/v1/communications", a.handleCommsCollection)
	a.mux.HandleFunc("/v1/communications/", a.handleCommResource)

	// Membership cards
	a.mux.HandleFunc("/v1/cards", a.handleCardsCollection)
	a.mux.HandleFunc("/v1/cards/", a.handleCardResource)
	a.mux.HandleFunc("/v1/cards/expire-due", a.handleExpireDue)

	// Live registration map
	a.mux.HandleFunc("/v1/stream", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "upnd-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "upnd-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
