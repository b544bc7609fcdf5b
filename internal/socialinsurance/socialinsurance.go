// Package socialinsurance computes the monthly pension, unemployment, health
// and care contributions (SV) split into employee and employer shares.
package socialinsurance

import (
	"math"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

type Params struct {
	Gross          float64
	Age            int
	Region         model.Region
	Childless      bool
	AdditionalRate float64
}

// Bases are the assessable incomes per ceiling. Pension and unemployment
// share Pension, health and care share Health.
type Bases struct {
	Pension float64 `json:"pension"`
	Health  float64 `json:"health"`
}

func (p Params) Validate() error {
	if p.Gross < 0 || math.IsNaN(p.Gross) || math.IsInf(p.Gross, 0) {
		return model.Invalidf("gross", "must be a non-negative number, got %v", p.Gross)
	}
	if p.AdditionalRate < 0 {
		return model.Invalidf("health_insurance_additional_rate", "must not be negative, got %v", p.AdditionalRate)
	}
	if p.Age < 0 {
		return model.Invalidf("age", "must not be negative, got %d", p.Age)
	}
	return nil
}

// CappedBases caps the gross at the ceilings of the table.
func CappedBases(t *ratetable.RateTable, gross float64, region model.Region) Bases {
	return Bases{
		Pension: math.Min(gross, t.PensionCeiling(region)),
		Health:  math.Min(gross, t.HealthCeiling()),
	}
}

func Calculate(t *ratetable.RateTable, p Params) (model.SVBreakdown, error) {
	if err := p.Validate(); err != nil {
		return model.SVBreakdown{}, err
	}
	return OnBases(t, CappedBases(t, p.Gross, p.Region), p), nil
}

// OnBases computes the contributions from already assessed bases. Every
// amount is rounded to the cent on its own; totals are sums of the rounded
// amounts.
func OnBases(t *ratetable.RateTable, b Bases, p Params) model.SVBreakdown {
	r := t.SocialInsurance

	pension := money.Apply(b.Pension, r.Pension/2)
	unemployment := money.Apply(b.Pension, r.Unemployment/2)
	health := money.Apply(b.Health, r.Health/2, p.AdditionalRate/2)
	careEmployer := money.Apply(b.Health, r.Care/2)
	careEmployee := careEmployer
	if ChildlessSurchargeApplies(t, p.Age, p.Childless) {
		careEmployee = money.Apply(b.Health, r.Care/2, r.CareChildlessSurcharge)
	}

	return model.SVBreakdown{
		Pension:      model.NewContribution(pension, pension),
		Unemployment: model.NewContribution(unemployment, unemployment),
		Health:       model.NewContribution(health, health),
		Care:         model.NewContribution(careEmployee, careEmployer),
	}
}

// ChildlessSurchargeApplies reports whether the employee pays the care
// insurance surcharge for childless persons. The employer never does.
func ChildlessSurchargeApplies(t *ratetable.RateTable, age int, childless bool) bool {
	return childless && age > t.SocialInsurance.CareSurchargeAfterAge
}
