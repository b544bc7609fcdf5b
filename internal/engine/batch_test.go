package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

func batchEmployees(n int) []model.Employee {
	out := make([]model.Employee, n)
	for i := range out {
		e := baseEmployee()
		e.ID = fmt.Sprintf("e-%03d", i)
		e.GrossSalary = 2500 + float64(i)*37.5
		e.TaxClass = model.TaxClass(i%6 + 1)
		out[i] = e
	}
	return out
}

func TestRunBatchMatchesSequential(t *testing.T) {
	p := provider(t)
	employees := batchEmployees(120)

	report, err := RunBatch(context.Background(), p, employees, period2024, BatchOptions{Workers: 8, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, report.Results, len(employees))
	assert.Empty(t, report.Failures)

	for i, e := range employees {
		want, err := Calculate(p, e, period2024, model.Overrides{})
		require.NoError(t, err)
		assert.Equal(t, want, report.Results[i], e.ID)
	}

	resp := report.Response()
	assert.Equal(t, model.OutcomeSuccess, resp.Outcome)
	assert.Len(t, resp.Results, 120)
	assert.Equal(t, report.RunID.String(), resp.RunID)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	employees := batchEmployees(10)
	employees[3].GrossSalary = -5
	employees[7].TaxClass = 0

	report, err := RunBatch(context.Background(), provider(t), employees, period2024, BatchOptions{Workers: 4, Logger: zerolog.Nop()})
	require.NoError(t, err)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, 3, report.Failures[0].Index)
	assert.Equal(t, "e-003", report.Failures[0].EmployeeID)
	assert.Equal(t, 7, report.Failures[1].Index)
	assert.Nil(t, report.Results[3])
	assert.Nil(t, report.Results[7])
	assert.NotNil(t, report.Results[4])

	resp := report.Response()
	assert.Equal(t, model.OutcomePartial, resp.Outcome)
	assert.Len(t, resp.Results, 8)
}

func TestRunBatchFailFast(t *testing.T) {
	employees := batchEmployees(50)
	employees[0].GrossSalary = -1

	report, err := RunBatch(context.Background(), provider(t), employees, period2024, BatchOptions{Workers: 1, FailFast: true, Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	require.NotEmpty(t, report.Failures)
	assert.Equal(t, 0, report.Failures[0].Index)
}

func TestRunBatchOverridesAndUnknownYear(t *testing.T) {
	employees := batchEmployees(3)
	gross := 9000.0

	report, err := RunBatch(context.Background(), provider(t), employees, period2024, BatchOptions{
		Overrides: map[string]model.Overrides{"e-001": {GrossSalary: &gross}},
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Equal(t, 9000.0, report.Results[1].Gross)

	report, err = RunBatch(context.Background(), provider(t), employees, model.Period{Year: 2001, Month: 1}, BatchOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Len(t, report.Failures, 3)
	assert.Equal(t, model.OutcomeFailure, report.Response().Outcome)
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunBatch(ctx, provider(t), batchEmployees(5), period2024, BatchOptions{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, context.Canceled)
}
