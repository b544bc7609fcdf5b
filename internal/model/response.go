package model

type CalculationResponse struct {
	CalculationMetadata CalculationMetadata      `json:"calculation_metadata"`
	Result              *SalaryCalculationResult `json:"result,omitempty"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type BatchFailure struct {
	EmployeeID string `json:"employee_id"`
	Index      int    `json:"index"`
	Error      string `json:"error"`
}

type BatchResponse struct {
	RunID              string                    `json:"run_id"`
	Period             Period                    `json:"period"`
	Outcome            string                    `json:"outcome"`
	Results            []SalaryCalculationResult `json:"results"`
	Failures           []BatchFailure            `json:"failures"`
	TotalsGross        float64                   `json:"totals_gross"`
	TotalsNet          float64                   `json:"totals_net"`
	TotalsEmployerCost float64                   `json:"totals_employer_cost"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomePartial = "PARTIAL"
	OutcomeFailure = "FAILURE"
)

const (
	ChangeAdded    = "add"
	ChangeRemoved  = "remove"
	ChangeReplaced = "replace"
)

// FieldChange is one difference between two results. Delta is set for
// numeric replacements only.
type FieldChange struct {
	Op       string   `json:"op"`
	Path     string   `json:"path"`
	Previous any      `json:"previous,omitempty"`
	Current  any      `json:"current,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
}

type CompareResponse struct {
	Previous *SalaryCalculationResult `json:"previous"`
	Current  *SalaryCalculationResult `json:"current"`
	Changes  []FieldChange            `json:"changes"`
}
