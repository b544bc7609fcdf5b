package ratetable

import (
	"fmt"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

// RateTable holds the statutory constants of one year. Tables are shared
// between concurrent calculations and must not be modified once registered.
type RateTable struct {
	Year              int                  `yaml:"year" json:"year"`
	IncomeTax         IncomeTaxRates       `yaml:"income_tax" json:"income_tax"`
	Solidarity        SolidarityRates      `yaml:"solidarity" json:"solidarity"`
	EstimateBrackets  Brackets             `yaml:"estimate_brackets" json:"estimate_brackets"`
	SocialInsurance   SocialInsuranceRates `yaml:"social_insurance" json:"social_insurance"`
	Ceilings          Ceilings             `yaml:"ceilings" json:"ceilings"`
	MinimumWage       float64              `yaml:"minimum_wage" json:"minimum_wage"`
	MinijobLimit      float64              `yaml:"minijob_limit" json:"minijob_limit"`
	MidijobLimit      float64              `yaml:"midijob_limit" json:"midijob_limit"`
	TaxFreeSurcharges TaxFreeSurcharges    `yaml:"tax_free_surcharges" json:"tax_free_surcharges"`
}

// TariffZone is one zone of the §32a tariff starting above From.
// Progressive zones use ((A*q + B)*q + C) with q = (x - From) / 10000,
// linear zones use Rate*x - C.
type TariffZone struct {
	From float64 `yaml:"from" json:"from"`
	A    float64 `yaml:"a" json:"a,omitempty"`
	B    float64 `yaml:"b" json:"b,omitempty"`
	C    float64 `yaml:"c" json:"c,omitempty"`
	Rate float64 `yaml:"rate" json:"rate,omitempty"`
}

func (z TariffZone) Linear() bool {
	return z.Rate > 0
}

type ClassVVIRates struct {
	W1        float64 `yaml:"w1" json:"w1"`
	W2        float64 `yaml:"w2" json:"w2"`
	W3        float64 `yaml:"w3" json:"w3"`
	MinRate   float64 `yaml:"min_rate" json:"min_rate"`
	UpperRate float64 `yaml:"upper_rate" json:"upper_rate"`
	TopRate   float64 `yaml:"top_rate" json:"top_rate"`
}

type IncomeTaxRates struct {
	BasicAllowance           float64       `yaml:"basic_allowance" json:"basic_allowance"`
	Zones                    []TariffZone  `yaml:"zones" json:"zones"`
	EmployeeAllowance        float64       `yaml:"employee_allowance" json:"employee_allowance"`
	SpecialExpensesAllowance float64       `yaml:"special_expenses_allowance" json:"special_expenses_allowance"`
	SingleParentRelief       float64       `yaml:"single_parent_relief" json:"single_parent_relief"`
	ChildAllowance           float64       `yaml:"child_allowance" json:"child_allowance"`
	OldAgeRelief             OldAgeRelief  `yaml:"old_age_relief" json:"old_age_relief"`
	ClassVVI                 ClassVVIRates `yaml:"class_v_vi" json:"class_v_vi"`
}

// OldAgeRelief is the Altersentlastungsbetrag for the cohort that reached
// MinAge in the year before the table year.
type OldAgeRelief struct {
	MinAge int     `yaml:"min_age" json:"min_age"`
	Rate   float64 `yaml:"rate" json:"rate"`
	Max    float64 `yaml:"max" json:"max"`
}

type SolidarityRates struct {
	Rate           float64 `yaml:"rate" json:"rate"`
	Threshold      float64 `yaml:"threshold" json:"threshold"`
	MitigationRate float64 `yaml:"mitigation_rate" json:"mitigation_rate"`
}

// Brackets is a flat marginal bracket approximation of the tariff.
type Brackets struct {
	Cutoffs []float64 `yaml:"cutoffs" json:"cutoffs"`
	Rates   []float64 `yaml:"rates" json:"rates"`
}

// SocialInsuranceRates are total rates; employee and employer pay half each.
type SocialInsuranceRates struct {
	Pension                 float64 `yaml:"pension" json:"pension"`
	Unemployment            float64 `yaml:"unemployment" json:"unemployment"`
	Health                  float64 `yaml:"health" json:"health"`
	HealthAdditionalAverage float64 `yaml:"health_additional_average" json:"health_additional_average"`
	Care                    float64 `yaml:"care" json:"care"`
	CareChildlessSurcharge  float64 `yaml:"care_childless_surcharge" json:"care_childless_surcharge"`
	CareSurchargeAfterAge   int     `yaml:"care_surcharge_after_age" json:"care_surcharge_after_age"`
}

// Ceilings are monthly contribution ceilings (BBG).
type Ceilings struct {
	PensionWest float64 `yaml:"pension_west" json:"pension_west"`
	PensionEast float64 `yaml:"pension_east" json:"pension_east"`
	Health      float64 `yaml:"health" json:"health"`
}

type TaxFreeSurcharges struct {
	BaseRateCap   float64 `yaml:"base_rate_cap" json:"base_rate_cap"`
	SVBaseRateCap float64 `yaml:"sv_base_rate_cap" json:"sv_base_rate_cap"`
	Night         float64 `yaml:"night" json:"night"`
	Sunday        float64 `yaml:"sunday" json:"sunday"`
	Holiday       float64 `yaml:"holiday" json:"holiday"`
}

// PensionCeiling is shared by pension and unemployment insurance.
func (t *RateTable) PensionCeiling(r model.Region) float64 {
	if r == model.RegionEast {
		return t.Ceilings.PensionEast
	}
	return t.Ceilings.PensionWest
}

// HealthCeiling is shared by health and care insurance.
func (t *RateTable) HealthCeiling() float64 {
	return t.Ceilings.Health
}

func (t *RateTable) Validate() error {
	if t.Year < 1 {
		return fmt.Errorf("rate table: invalid year %d", t.Year)
	}
	it := t.IncomeTax
	if it.BasicAllowance <= 0 || len(it.Zones) == 0 {
		return fmt.Errorf("rate table %d: income tax tariff missing", t.Year)
	}
	for i := 1; i < len(it.Zones); i++ {
		if it.Zones[i].From <= it.Zones[i-1].From {
			return fmt.Errorf("rate table %d: tariff zones not ascending at %d", t.Year, i)
		}
	}
	b := t.EstimateBrackets
	if len(b.Cutoffs) == 0 || len(b.Cutoffs) != len(b.Rates) {
		return fmt.Errorf("rate table %d: estimate brackets cutoffs/rates mismatch", t.Year)
	}
	for name, r := range map[string]float64{
		"pension":                  t.SocialInsurance.Pension,
		"unemployment":             t.SocialInsurance.Unemployment,
		"health":                   t.SocialInsurance.Health,
		"care":                     t.SocialInsurance.Care,
		"care_childless_surcharge": t.SocialInsurance.CareChildlessSurcharge,
		"solidarity":               t.Solidarity.Rate,
	} {
		if r < 0 || r >= 1 {
			return fmt.Errorf("rate table %d: rate %s out of range: %v", t.Year, name, r)
		}
	}
	if t.Ceilings.PensionWest <= 0 || t.Ceilings.PensionEast <= 0 || t.Ceilings.Health <= 0 {
		return fmt.Errorf("rate table %d: contribution ceilings must be positive", t.Year)
	}
	return nil
}
