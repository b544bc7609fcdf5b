package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

// Process wraps Calculate with the run metadata returned to API and CLI
// callers. The result itself carries no timestamps or ids.
func Process(rates RateSource, req *model.CalculationRequest) (*model.CalculationResponse, error) {
	return Track(func() (*model.SalaryCalculationResult, error) {
		return Calculate(rates, req.Employee, req.Period, req.Overrides)
	})
}

// Track runs calc and records id, timing and outcome around it.
func Track(calc func() (*model.SalaryCalculationResult, error)) (*model.CalculationResponse, error) {
	start := time.Now()

	res, err := calc()

	elapsed := time.Since(start)
	now := time.Now().UTC()

	outcome := model.OutcomeSuccess
	if err != nil {
		outcome = model.OutcomeFailure
	}

	return &model.CalculationResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          uuid.New().String(),
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
		},
		Result: res,
	}, err
}
