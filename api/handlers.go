/*
handlers.go - HTTP API handlers for the points ledger

PURPOSE:
  Exposes the ledger session to a browser front end. Handles HTTP
  request/response and JSON, and delegates every decision to the ledger,
  gate and rewards packages.

ENDPOINTS:
  Ledger:
    GET    /api/ledger                 Balance, entries, payout, gate state
    GET    /api/export                 CSV download of the active period

  Entries (admin gated):
    POST   /api/entries                Add a deduction, bonus, grade or custom entry
    PUT    /api/entries/{index}        Edit an entry
    DELETE /api/entries/{index}        Delete an entry

  Gate:
    GET    /api/gate                   Lock state and pending action
    POST   /api/gate/credential        Submit the admin code
    POST   /api/gate/cancel            Drop the pending action

  Catalog:
    GET    /api/catalog                Subjects, deductions, bonuses

GATED RESPONSES:
  201/200: The action ran (201 for a new entry)
  202:     The action is pending; prompt for the admin code
  401:     Wrong admin code; the pending action is kept

  If the action ran but could not be saved, the response still succeeds and
  carries a "warning".

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, unknown subject or catalog label
  - 401: Incorrect admin code
  - 404: Entry index out of range
  - 500: Internal errors

CONCURRENCY:
  The ledger core is single-threaded. Handler serializes every session call
  with a mutex so requests run one at a time.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/points-engine/ledger"
	"github.com/warp/points-engine/rewards"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// SessionOpener opens the session of a period. Used when the month turns.
type SessionOpener func(ctx context.Context, period ledger.PeriodKey) (*ledger.Session, error)

// HandlerConfig holds the dependencies of a Handler.
type HandlerConfig struct {
	Session *ledger.Session
	Catalog rewards.Catalog

	// Open is required for Rollover.
	Open SessionOpener

	// Clock defaults to time.Now.
	Clock func() time.Time

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics defaults to a fresh registry.
	Metrics *Metrics
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog   rewards.Catalog
	Evaluator *rewards.Evaluator
	Metrics   *Metrics

	log   *zap.Logger
	open  SessionOpener
	clock func() time.Time

	mu      sync.Mutex
	session *ledger.Session
}

// NewHandler creates a new handler around an open session.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}

	h := &Handler{
		Catalog:   cfg.Catalog,
		Evaluator: rewards.NewEvaluator(cfg.Catalog),
		Metrics:   cfg.Metrics,
		log:       cfg.Logger,
		open:      cfg.Open,
		clock:     cfg.Clock,
		session:   cfg.Session,
	}
	h.observeState()
	return h
}

// errBadRequest marks input the handler rejects before reaching the core.
var errBadRequest = errors.New("bad request")

// =============================================================================
// LEDGER ENDPOINTS
// =============================================================================

// GetLedger returns the active period.
// GET /api/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	dto := h.ledgerDTO()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, dto)
}

// Export downloads the active period as CSV.
// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	exp, err := h.session.Export()
	h.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render export", err)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Body)
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

// CreateEntry adds an entry built from the catalog, a grade, or custom input.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	description, delta, err := h.entryFor(req)
	if err != nil {
		writeError(w, statusFor(err), "Invalid entry", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.session.Append(r.Context(), description, delta)
	h.respondAction(w, res, err)
}

// entryFor turns a create request into a description and point delta.
func (h *Handler) entryFor(req CreateEntryRequest) (string, int, error) {
	switch rewards.EntryType(req.Type) {
	case rewards.EntryDeduction:
		it, err := h.Catalog.Item(rewards.CategoryDeduction, req.Label)
		if err != nil {
			return "", 0, err
		}
		return it.Label, it.Points, nil

	case rewards.EntryBonus:
		it, err := h.Catalog.Item(rewards.CategoryBonus, req.Label)
		if err != nil {
			return "", 0, err
		}
		return it.Label, it.Points, nil

	case rewards.EntryGrade:
		if req.Subject == "" || req.Grade == nil {
			return "", 0, fmt.Errorf("%w: grade entries need subject and grade", errBadRequest)
		}
		ev, err := h.Evaluator.Evaluate(req.Subject, *req.Grade)
		if err != nil {
			return "", 0, err
		}
		return ev.Description, ev.Delta, nil

	case rewards.EntryCustom:
		if req.Description == "" || req.Points == nil {
			return "", 0, fmt.Errorf("%w: custom entries need description and points", errBadRequest)
		}
		return req.Description, *req.Points, nil

	default:
		return "", 0, fmt.Errorf("%w: unknown entry type %q", errBadRequest, req.Type)
	}
}

// EditEntry replaces an entry.
// PUT /api/entries/{index}
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry index", err)
		return
	}

	var req EditEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Points == nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", fmt.Errorf("%w: points are required", errBadRequest))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.session.Edit(r.Context(), index, req.Description, req.Date, *req.Points)
	h.respondAction(w, res, err)
}

// DeleteEntry removes an entry.
// DELETE /api/entries/{index}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry index", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.session.Delete(r.Context(), index)
	h.respondAction(w, res, err)
}

// =============================================================================
// GATE ENDPOINTS
// =============================================================================

// GetGate returns the lock state and pending action.
// GET /api/gate
func (h *Handler) GetGate(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	dto := h.gateDTO()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, dto)
}

// SubmitCredential checks the admin code and runs the pending action.
// POST /api/gate/credential
func (h *Handler) SubmitCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	wasLocked := h.session.GateState() == ledger.GateLocked
	res, err := h.session.SubmitCredential(r.Context(), req.Code)
	switch {
	case errors.Is(err, ledger.ErrIncorrectCredential):
		h.Metrics.GateEvents.WithLabelValues("rejected").Inc()
	case err == nil && wasLocked:
		h.Metrics.GateEvents.WithLabelValues("unlocked").Inc()
	}
	h.respondAction(w, res, err)
}

// CancelPending drops the pending action.
// POST /api/gate/cancel
func (h *Handler) CancelPending(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.session.Pending(); ok {
		h.Metrics.GateEvents.WithLabelValues("cancelled").Inc()
	}
	h.session.Cancel()
	writeJSON(w, http.StatusOK, h.gateDTO())
}

// =============================================================================
// CATALOG ENDPOINTS
// =============================================================================

// GetCatalog returns the reference tables.
// GET /api/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCatalogDTO(h.Catalog))
}

// Healthz reports liveness.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PERIOD ROLLOVER
// =============================================================================

// Rollover opens the current month's session if the month has turned.
// The new session starts locked, as after a reload.
func (h *Handler) Rollover(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := ledger.PeriodFor(h.clock())
	if current == h.session.Period() {
		return false, nil
	}
	if h.open == nil {
		return false, errors.New("rollover: no session opener configured")
	}

	s, err := h.open(ctx, current)
	if err != nil {
		return false, fmt.Errorf("rollover to %s: %w", current, err)
	}

	h.log.Info("period rolled over",
		zap.String("from", string(h.session.Period())),
		zap.String("to", string(current)))
	h.session = s
	h.observeState()
	return true, nil
}

// Period returns the active period key.
func (h *Handler) Period() ledger.PeriodKey {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.Period()
}

// =============================================================================
// HELPERS
// =============================================================================

// respondAction writes the result of a gated call. Caller holds h.mu.
func (h *Handler) respondAction(w http.ResponseWriter, res ledger.Result, err error) {
	if err != nil {
		writeError(w, statusFor(err), errorMessage(err), err)
		return
	}

	resp := ActionResponse{Outcome: string(res.Outcome)}
	status := http.StatusOK

	switch res.Outcome {
	case ledger.OutcomeExecuted:
		resp.Action = toActionDTO(res.Action)
		h.Metrics.Mutations.WithLabelValues(string(res.Action.Kind)).Inc()
		if res.Action.Kind == ledger.ActionAppend {
			id := int(res.EntryID)
			resp.EntryID = &id
			status = http.StatusCreated
		}
		if res.PersistErr != nil {
			h.Metrics.PersistFailures.Inc()
			resp.Warning = "changes are kept for this session but could not be saved: " + res.PersistErr.Error()
		}
		h.observeState()

	case ledger.OutcomeCredentialRequired:
		resp.Action = toActionDTO(res.Action)
		h.Metrics.GateEvents.WithLabelValues("prompted").Inc()
		status = http.StatusAccepted
	}

	resp.Ledger = h.ledgerDTO()
	writeJSON(w, status, resp)
}

func (h *Handler) ledgerDTO() LedgerDTO {
	return toLedgerDTO(h.session.Period(), h.session.Snapshot(), h.gateDTO())
}

func (h *Handler) gateDTO() GateDTO {
	pending, ok := h.session.Pending()
	return toGateDTO(h.session.GateState(), pending, ok)
}

func (h *Handler) observeState() {
	snap := h.session.Snapshot()
	h.Metrics.Balance.Set(float64(snap.Balance))
	h.Metrics.Entries.Set(float64(len(snap.Entries)))
}

func parseIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrIncorrectCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, rewards.ErrUnknownSubject),
		errors.Is(err, rewards.ErrUnknownItem),
		errors.Is(err, errBadRequest),
		ledger.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, ledger.ErrIncorrectCredential):
		return "Incorrect code"
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return "Entry not found"
	case ledger.IsClientError(err):
		return "Invalid entry"
	default:
		return "Request failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
