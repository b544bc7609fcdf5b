package socialinsurance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

func rates2024(t *testing.T) *ratetable.RateTable {
	t.Helper()
	p, err := ratetable.Default()
	require.NoError(t, err)
	rt, err := p.Rates(2024)
	require.NoError(t, err)
	return rt
}

func TestCalculateBelowCeilings(t *testing.T) {
	rt := rates2024(t)

	sv, err := Calculate(rt, Params{Gross: 4000, Age: 30, Region: model.RegionWest, AdditionalRate: 0.017})
	require.NoError(t, err)

	assert.Equal(t, model.NewContribution(372, 372), sv.Pension)
	assert.Equal(t, model.NewContribution(52, 52), sv.Unemployment)
	assert.Equal(t, model.NewContribution(326, 326), sv.Health)
	assert.Equal(t, model.NewContribution(68, 68), sv.Care)
	assert.Equal(t, 818.0, sv.EmployeeTotal())
	assert.Equal(t, 818.0, sv.EmployerTotal())
}

func TestCalculateCapsAtCeilings(t *testing.T) {
	rt := rates2024(t)

	west, err := Calculate(rt, Params{Gross: 9000, Age: 40, Region: model.RegionWest, Childless: true, AdditionalRate: 0.017})
	require.NoError(t, err)
	assert.Equal(t, 702.15, west.Pension.Employee)
	assert.Equal(t, 98.15, west.Unemployment.Employee)
	assert.Equal(t, 421.76, west.Health.Employee)
	assert.Equal(t, 421.76, west.Health.Employer)
	assert.Equal(t, 87.98, west.Care.Employer)
	assert.Equal(t, 119.03, west.Care.Employee)

	east, err := Calculate(rt, Params{Gross: 9000, Age: 40, Region: model.RegionEast, AdditionalRate: 0.017})
	require.NoError(t, err)
	assert.Equal(t, 692.85, east.Pension.Employee)
	assert.Equal(t, west.Health, east.Health)
}

func TestChildlessSurcharge(t *testing.T) {
	rt := rates2024(t)

	cases := []struct {
		name      string
		age       int
		childless bool
		employee  float64
	}{
		{"age 30 childless", 30, true, 92},
		{"age 30 with children", 30, false, 68},
		{"age 17 childless", 17, true, 68},
		{"age 23 childless", 23, true, 68},
		{"age 24 childless", 24, true, 92},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sv, err := Calculate(rt, Params{Gross: 4000, Age: tc.age, Childless: tc.childless, AdditionalRate: 0.017})
			require.NoError(t, err)
			assert.Equal(t, tc.employee, sv.Care.Employee)
			assert.Equal(t, 68.0, sv.Care.Employer)
		})
	}
}

func TestIndependentRounding(t *testing.T) {
	rt := rates2024(t)

	sv, err := Calculate(rt, Params{Gross: 3333.33, Age: 30, AdditionalRate: 0.017})
	require.NoError(t, err)

	// 3333.33 * 0.093 = 309.99969 and 3333.33 * 0.013 = 43.33329.
	assert.Equal(t, 310.0, sv.Pension.Employee)
	assert.Equal(t, 43.33, sv.Unemployment.Employee)
	assert.Equal(t, 620.0, sv.Pension.Total)
	assert.InDelta(t, sv.Pension.Employee+sv.Unemployment.Employee+sv.Health.Employee+sv.Care.Employee, sv.EmployeeTotal(), 1e-9)
}

func TestOnBasesUsesGivenBases(t *testing.T) {
	rt := rates2024(t)

	sv := OnBases(rt, Bases{Pension: 4718.75, Health: 3234.38}, Params{Age: 30, AdditionalRate: 0.017})
	assert.Equal(t, 438.84, sv.Pension.Employee)
	assert.Equal(t, 61.34, sv.Unemployment.Employee)
}

func TestInvalidParams(t *testing.T) {
	rt := rates2024(t)

	for _, p := range []Params{{Gross: -1}, {Gross: 100, AdditionalRate: -0.01}, {Gross: 100, Age: -3}} {
		_, err := Calculate(rt, p)
		assert.True(t, errors.Is(err, model.ErrInvalidInput), "%+v", p)
	}
}
