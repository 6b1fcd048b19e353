/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

MONEY ON THE WIRE:
  Every monetary field is an exact decimal string ("30.00"), never a
  binary float. Dates are YYYY-MM-DD; timestamps are RFC 3339.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers
*/
package api

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// TASKS
// =============================================================================

type TaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// =============================================================================
// WORKLOGS
// =============================================================================

type TimeSegmentDTO struct {
	ID               string  `json:"id"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Status           string  `json:"status"`
	SettlementStatus string  `json:"settlement_status"`
	RemittanceID     *string `json:"remittance_id,omitempty"`
}

type AdjustmentDTO struct {
	ID               string  `json:"id"`
	Amount           string  `json:"amount"`
	Reason           string  `json:"reason"`
	Type             string  `json:"type"`
	SettlementStatus string  `json:"settlement_status"`
	RemittanceID     *string `json:"remittance_id,omitempty"`
}

// WorkLogAmountsDTO is the remitted/unremitted/total breakdown.
type WorkLogAmountsDTO struct {
	RemittedAmount   string `json:"remitted_amount"`
	UnremittedAmount string `json:"unremitted_amount"`
	TotalAmount      string `json:"total_amount"`
}

type WorkLogDTO struct {
	ID               string            `json:"id"`
	TaskID           string            `json:"task_id"`
	WorkerID         string            `json:"worker_id"`
	HourlyRate       string            `json:"hourly_rate"`
	RemittanceID     *string           `json:"remittance_id,omitempty"`
	CreatedAt        string            `json:"created_at"`
	TimeSegments     []TimeSegmentDTO  `json:"time_segments"`
	Adjustments      []AdjustmentDTO   `json:"adjustments"`
	Amounts          WorkLogAmountsDTO `json:"amounts"`
	RemittanceStatus string            `json:"remittance_status"`
}

type WorkLogListResponse struct {
	Data  []WorkLogDTO `json:"data"`
	Count int          `json:"count"`
}

type CreateWorkLogRequest struct {
	TaskID     string `json:"task_id"`
	WorkerID   string `json:"worker_id"`
	HourlyRate string `json:"hourly_rate"`
}

type CreateSegmentRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type UpdateSegmentStatusRequest struct {
	Status string `json:"status"`
}

type CreateAdjustmentRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

// =============================================================================
// REMITTANCES
// =============================================================================

type RemittanceDTO struct {
	ID            string `json:"id"`
	WorkerID      string `json:"worker_id"`
	GrossAmount   string `json:"gross_amount"`
	NetAmount     string `json:"net_amount"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	CreatedAt     string `json:"created_at"`
	ProcessedAt   string `json:"processed_at,omitempty"`
}

// GenerateRemittancesRequest configures one settlement run.
// Dates are YYYY-MM-DD; both default to the current calendar month.
type GenerateRemittancesRequest struct {
	PeriodStart  string `json:"period_start,omitempty"`
	PeriodEnd    string `json:"period_end,omitempty"`
	DryRun       bool   `json:"dry_run"`
	PayoutStatus string `json:"payout_status,omitempty"`
}

// RemittanceSummaryDTO is one worker's batch within a run.
type RemittanceSummaryDTO struct {
	ID            string `json:"id"`
	WorkerID      string `json:"worker_id"`
	GrossAmount   string `json:"gross_amount"`
	NetAmount     string `json:"net_amount"`
	Status        string `json:"status"`
	WorkLogsCount int    `json:"worklogs_count"`
}

type GenerateRemittancesResponse struct {
	RemittancesCreated int                    `json:"remittances_created"`
	TotalGrossAmount   string                 `json:"total_gross_amount"`
	TotalNetAmount     string                 `json:"total_net_amount"`
	Remittances        []RemittanceSummaryDTO `json:"remittances"`
	DryRun             bool                   `json:"dry_run"`
	PeriodStart        string                 `json:"period_start"`
	PeriodEnd          string                 `json:"period_end"`
	Anomalies          int                    `json:"anomalies,omitempty"`
}
