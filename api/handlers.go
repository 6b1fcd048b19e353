/*
handlers.go - HTTP API handlers for the settlement system

PURPOSE:
  Exposes the settlement engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Tasks:
    GET    /api/tasks                       List tasks
    POST   /api/tasks                       Create task
    GET    /api/tasks/{id}                  Get task

  WorkLogs:
    GET    /api/worklogs                    List with amounts + status
    POST   /api/worklogs                    Create worklog
    GET    /api/worklogs/{id}               Get one worklog
    DELETE /api/worklogs/{id}               Delete (children cascade)
    POST   /api/worklogs/{id}/segments      Log a time segment
    POST   /api/worklogs/{id}/adjustments   Add bonus/deduction
    PUT    /api/segments/{id}/status        Dispute/remove a segment

  Remittances:
    GET    /api/remittances                 Payout history
    GET    /api/remittances/{id}            One payout batch
    POST   /api/remittances/generate        Run settlement (admin)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/bad admin token on a real generation run
  - 404: Record not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/settlement-engine/money"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *settlement.Engine
	Logger *zap.Logger

	// AdminToken gates non-dry-run generation. Empty disables the gate.
	AdminToken string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, engine *settlement.Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Engine: engine, Logger: logger}
}

// =============================================================================
// TASK HANDLERS
// =============================================================================

// ListTasks returns all tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.ListTasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTask creates a new task.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required", nil)
		return
	}

	task := settlement.Task{
		ID:          settlement.TaskID(uuid.NewString()),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// GetTask returns a single task.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := settlement.TaskID(chi.URLParam(r, "id"))

	task, err := h.Store.GetTask(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get task", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(*task))
}

// =============================================================================
// WORKLOG HANDLERS
// =============================================================================

// ListWorkLogs returns all worklogs with calculated amounts and overall
// settlement classification, optionally filtered by classification.
// GET /api/worklogs?remittance_status=REMITTED|UNREMITTED
func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := settlement.ParseClassification(r.URL.Query().Get("remittance_status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "remittance_status must be REMITTED or UNREMITTED", err)
		return
	}

	worklogs, err := h.Store.ListWorkLogs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list worklogs", err)
		return
	}

	dtos := make([]WorkLogDTO, 0, len(worklogs))
	for _, wl := range worklogs {
		dto, classification, err := h.buildWorkLogDTO(r, wl)
		if err != nil {
			h.writeDomainError(w, "Failed to compute worklog amounts", err)
			return
		}
		if filter != "" && classification != filter {
			continue
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, WorkLogListResponse{Data: dtos, Count: len(dtos)})
}

// GetWorkLog returns one worklog with amounts.
func (h *Handler) GetWorkLog(w http.ResponseWriter, r *http.Request) {
	id := settlement.WorkLogID(chi.URLParam(r, "id"))

	wl, err := h.Store.GetWorkLog(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get worklog", err)
		return
	}

	dto, _, err := h.buildWorkLogDTO(r, *wl)
	if err != nil {
		h.writeDomainError(w, "Failed to compute worklog amounts", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateWorkLog creates a worklog for a worker on a task.
func (h *Handler) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TaskID == "" || req.WorkerID == "" {
		writeError(w, http.StatusBadRequest, "task_id and worker_id are required", nil)
		return
	}

	rate, err := money.Parse(req.HourlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hourly_rate must be a decimal string", err)
		return
	}
	if rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "hourly_rate must not be negative", nil)
		return
	}

	// Task must exist; worklogs reference but never own tasks.
	if _, err := h.Store.GetTask(r.Context(), settlement.TaskID(req.TaskID)); err != nil {
		h.writeDomainError(w, "Failed to resolve task", err)
		return
	}

	wl := settlement.WorkLog{
		ID:         settlement.WorkLogID(uuid.NewString()),
		TaskID:     settlement.TaskID(req.TaskID),
		WorkerID:   settlement.WorkerID(req.WorkerID),
		HourlyRate: rate,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveWorkLog(r.Context(), wl); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create worklog", err)
		return
	}

	dto, _, err := h.buildWorkLogDTO(r, wl)
	if err != nil {
		h.writeDomainError(w, "Failed to compute worklog amounts", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// DeleteWorkLog removes a worklog and its segments/adjustments.
func (h *Handler) DeleteWorkLog(w http.ResponseWriter, r *http.Request) {
	id := settlement.WorkLogID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteWorkLog(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete worklog", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// CreateSegment logs a time segment against a worklog.
func (h *Handler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	worklogID := settlement.WorkLogID(chi.URLParam(r, "id"))

	var req CreateSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time (use RFC 3339)", err)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time (use RFC 3339)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_time must not precede start_time", settlement.ErrNegativeDuration)
		return
	}

	if _, err := h.Store.GetWorkLog(r.Context(), worklogID); err != nil {
		h.writeDomainError(w, "Failed to resolve worklog", err)
		return
	}

	seg := settlement.TimeSegment{
		ID:               settlement.SegmentID(uuid.NewString()),
		WorkLogID:        worklogID,
		Start:            start.UTC(),
		End:              end.UTC(),
		Status:           settlement.SegmentActive,
		SettlementStatus: settlement.Unremitted,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.Store.SaveSegment(r.Context(), seg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create segment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSegmentDTO(seg))
}

// UpdateSegmentStatus moves a segment between ACTIVE, REMOVED and
// DISPUTED. Settlement status is untouched: a paid segment stays paid
// even when disputed afterwards.
func (h *Handler) UpdateSegmentStatus(w http.ResponseWriter, r *http.Request) {
	id := settlement.SegmentID(chi.URLParam(r, "id"))

	var req UpdateSegmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := settlement.SegmentStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be ACTIVE, REMOVED or DISPUTED", nil)
		return
	}

	if err := h.Store.UpdateSegmentStatus(r.Context(), id, status); err != nil {
		h.writeDomainError(w, "Failed to update segment status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": string(id), "status": string(status)})
}

// CreateAdjustment adds a bonus/deduction/correction to a worklog.
// Allowed at any time, including after the worklog has been settled:
// the adjustment starts UNREMITTED and the next batch sweeps it up.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	worklogID := settlement.WorkLogID(chi.URLParam(r, "id"))

	var req CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal string", err)
		return
	}
	adjType := settlement.AdjustmentType(req.Type)
	if !adjType.Valid() {
		writeError(w, http.StatusBadRequest, "type must be DEDUCTION, BONUS or CORRECTION", nil)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "reason is required", nil)
		return
	}

	if _, err := h.Store.GetWorkLog(r.Context(), worklogID); err != nil {
		h.writeDomainError(w, "Failed to resolve worklog", err)
		return
	}

	adj := settlement.Adjustment{
		ID:               settlement.AdjustmentID(uuid.NewString()),
		WorkLogID:        worklogID,
		Amount:           amount.Round2(),
		Reason:           req.Reason,
		Type:             adjType,
		SettlementStatus: settlement.Unremitted,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.Store.SaveAdjustment(r.Context(), adj); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdjustmentDTO(adj))
}

// =============================================================================
// REMITTANCE HANDLERS
// =============================================================================

// ListRemittances returns payout history, optionally by status.
func (h *Handler) ListRemittances(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !settlement.RemittanceStatus(strings.ToUpper(status)).Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status filter", settlement.ErrInvalidStatus)
		return
	}

	rems, err := h.Store.ListRemittances(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list remittances", err)
		return
	}

	dtos := make([]RemittanceDTO, len(rems))
	for i, rem := range rems {
		dtos[i] = toRemittanceDTO(rem)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRemittance returns one payout batch.
func (h *Handler) GetRemittance(w http.ResponseWriter, r *http.Request) {
	id := settlement.RemittanceID(chi.URLParam(r, "id"))

	rem, err := h.Store.GetRemittance(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get remittance", err)
		return
	}
	writeJSON(w, http.StatusOK, toRemittanceDTO(*rem))
}

// GenerateRemittances runs settlement for everyone with outstanding
// pay. Real (non-dry-run) runs require the configured admin token.
// POST /api/remittances/generate
func (h *Handler) GenerateRemittances(w http.ResponseWriter, r *http.Request) {
	var req GenerateRemittancesRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if !req.DryRun && !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Admin token required for non-dry-run generation", nil)
		return
	}

	input := settlement.GenerateInput{DryRun: req.DryRun}

	if req.PeriodStart != "" {
		t, err := time.Parse("2006-01-02", req.PeriodStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period_start (use YYYY-MM-DD)", err)
			return
		}
		input.PeriodStart = &t
	}
	if req.PeriodEnd != "" {
		t, err := time.Parse("2006-01-02", req.PeriodEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period_end (use YYYY-MM-DD)", err)
			return
		}
		input.PeriodEnd = &t
	}
	if req.PayoutStatus != "" {
		status := settlement.RemittanceStatus(strings.ToUpper(req.PayoutStatus))
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid payout_status", settlement.ErrInvalidStatus)
			return
		}
		input.StatusOverride = &status
	}

	result, err := h.Engine.Generate(r.Context(), input)
	if err != nil {
		h.writeDomainError(w, "Failed to generate remittances", err)
		return
	}

	summaries := make([]RemittanceSummaryDTO, len(result.Remittances))
	for i, s := range result.Remittances {
		summaries[i] = RemittanceSummaryDTO{
			ID:            string(s.RemittanceID),
			WorkerID:      string(s.WorkerID),
			GrossAmount:   s.GrossAmount.StringFixed(),
			NetAmount:     s.NetAmount.StringFixed(),
			Status:        string(s.Status),
			WorkLogsCount: s.WorkLogCount,
		}
	}

	writeJSON(w, http.StatusOK, GenerateRemittancesResponse{
		RemittancesCreated: result.RemittancesCreated,
		TotalGrossAmount:   result.TotalGross.StringFixed(),
		TotalNetAmount:     result.TotalNet.StringFixed(),
		Remittances:        summaries,
		DryRun:             result.DryRun,
		PeriodStart:        result.Period.Start.Format("2006-01-02"),
		PeriodEnd:          result.Period.End.Format("2006-01-02"),
		Anomalies:          result.Anomalies,
	})
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.AdminToken == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ") == h.AdminToken
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func (h *Handler) buildWorkLogDTO(r *http.Request, wl settlement.WorkLog) (WorkLogDTO, settlement.Classification, error) {
	ctx := r.Context()

	segments, err := h.Store.SegmentsForWorkLog(ctx, wl.ID)
	if err != nil {
		return WorkLogDTO{}, "", err
	}
	adjustments, err := h.Store.AdjustmentsForWorkLog(ctx, wl.ID)
	if err != nil {
		return WorkLogDTO{}, "", err
	}

	amounts, err := settlement.WorkLogAmounts(wl.HourlyRate, segments, adjustments)
	if err != nil {
		return WorkLogDTO{}, "", err
	}
	classification := amounts.Classify()

	segDTOs := make([]TimeSegmentDTO, len(segments))
	for i, seg := range segments {
		segDTOs[i] = toSegmentDTO(seg)
	}
	adjDTOs := make([]AdjustmentDTO, len(adjustments))
	for i, adj := range adjustments {
		adjDTOs[i] = toAdjustmentDTO(adj)
	}

	return WorkLogDTO{
		ID:           string(wl.ID),
		TaskID:       string(wl.TaskID),
		WorkerID:     string(wl.WorkerID),
		HourlyRate:   wl.HourlyRate.StringFixed(),
		RemittanceID: remittanceRef(wl.RemittanceID),
		CreatedAt:    wl.CreatedAt.Format(time.RFC3339),
		TimeSegments: segDTOs,
		Adjustments:  adjDTOs,
		Amounts: WorkLogAmountsDTO{
			RemittedAmount:   amounts.Remitted.StringFixed(),
			UnremittedAmount: amounts.Unremitted.StringFixed(),
			TotalAmount:      amounts.Total.StringFixed(),
		},
		RemittanceStatus: string(classification),
	}, classification, nil
}

func toTaskDTO(t settlement.Task) TaskDTO {
	return TaskDTO{
		ID:          string(t.ID),
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func toSegmentDTO(seg settlement.TimeSegment) TimeSegmentDTO {
	return TimeSegmentDTO{
		ID:               string(seg.ID),
		StartTime:        seg.Start.Format(time.RFC3339),
		EndTime:          seg.End.Format(time.RFC3339),
		Status:           string(seg.Status),
		SettlementStatus: string(seg.SettlementStatus),
		RemittanceID:     remittanceRef(seg.RemittanceID),
	}
}

func toAdjustmentDTO(adj settlement.Adjustment) AdjustmentDTO {
	return AdjustmentDTO{
		ID:               string(adj.ID),
		Amount:           adj.Amount.StringFixed(),
		Reason:           adj.Reason,
		Type:             string(adj.Type),
		SettlementStatus: string(adj.SettlementStatus),
		RemittanceID:     remittanceRef(adj.RemittanceID),
	}
}

func toRemittanceDTO(rem settlement.Remittance) RemittanceDTO {
	dto := RemittanceDTO{
		ID:            string(rem.ID),
		WorkerID:      string(rem.WorkerID),
		GrossAmount:   rem.GrossAmount.StringFixed(),
		NetAmount:     rem.NetAmount.StringFixed(),
		Status:        string(rem.Status),
		FailureReason: rem.FailureReason,
		PeriodStart:   rem.PeriodStart.Format(time.RFC3339),
		PeriodEnd:     rem.PeriodEnd.Format(time.RFC3339),
		CreatedAt:     rem.CreatedAt.Format(time.RFC3339),
	}
	if rem.ProcessedAt != nil {
		dto.ProcessedAt = rem.ProcessedAt.Format(time.RFC3339)
	}
	return dto
}

func remittanceRef(id *settlement.RemittanceID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

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

// writeDomainError maps engine error classes onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case settlement.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case settlement.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
