package model

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// Employee is the calculation input for one person. All rates are fractions
// (0.09 means 9 %).
type Employee struct {
	ID                            string       `json:"id" csv:"id"`
	GrossSalary                   float64      `json:"gross_salary" csv:"gross_salary"`
	TaxClass                      TaxClass     `json:"tax_class" csv:"tax_class"`
	ChildAllowances               float64      `json:"child_allowances" csv:"child_allowances"`
	ChurchTax                     bool         `json:"church_tax" csv:"church_tax"`
	ChurchTaxRate                 float64      `json:"church_tax_rate" csv:"church_tax_rate"`
	HealthInsuranceAdditionalRate float64      `json:"health_insurance_additional_rate" csv:"health_insurance_additional_rate"`
	IsEastGermany                 bool         `json:"is_east_germany" csv:"is_east_germany"`
	IsChildless                   bool         `json:"is_childless" csv:"is_childless"`
	Age                           int          `json:"age" csv:"age"`
	Employments                   []Employment `json:"employments,omitempty" csv:"-"`
}

// Employment is one concurrent job of a person. Whether it is the main
// employment is derived by the distributor and never stored here.
type Employment struct {
	EmployerID   string   `json:"employer_id"`
	GrossMonthly float64  `json:"gross_monthly"`
	WeeklyHours  float64  `json:"weekly_hours"`
	TaxClass     TaxClass `json:"tax_class"`
	StartDate    string   `json:"start_date"`
}

type Region int

const (
	RegionWest Region = iota
	RegionEast
)

func (r Region) String() string {
	if r == RegionEast {
		return "east"
	}
	return "west"
}

func RegionOf(east bool) Region {
	if east {
		return RegionEast
	}
	return RegionWest
}

type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// HourCounts are non-exclusive: one worked hour may be counted as overtime,
// night and sunday at the same time.
type HourCounts struct {
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
	Night    float64 `json:"night"`
	Sunday   float64 `json:"sunday"`
	Holiday  float64 `json:"holiday"`
}

// SurchargeScheme holds surcharge fractions on top of the base hourly rate.
type SurchargeScheme struct {
	Name     string  `json:"name" yaml:"name"`
	Overtime float64 `json:"overtime" yaml:"overtime"`
	Night    float64 `json:"night" yaml:"night"`
	Sunday   float64 `json:"sunday" yaml:"sunday"`
	Holiday  float64 `json:"holiday" yaml:"holiday"`
}

// Overrides replace selected employee fields for a single calculation.
type Overrides struct {
	GrossSalary *float64         `json:"gross_salary,omitempty"`
	TaxClass    *TaxClass        `json:"tax_class,omitempty"`
	Hours       *HourCounts      `json:"hours,omitempty"`
	SchemeName  string           `json:"scheme,omitempty"`
	Scheme      *SurchargeScheme `json:"surcharge_scheme,omitempty"`
	Estimator   string           `json:"estimator,omitempty"`
}

func (e *Employee) Region() Region {
	return RegionOf(e.IsEastGermany)
}

func (e *Employee) Validate() error {
	if err := nonNegative("gross_salary", e.GrossSalary); err != nil {
		return err
	}
	if len(e.Employments) == 0 && !e.TaxClass.Valid() {
		return Invalidf("tax_class", "malformed tax class %d", int(e.TaxClass))
	}
	if err := nonNegative("child_allowances", e.ChildAllowances); err != nil {
		return err
	}
	if e.ChurchTax && e.ChurchTaxRate != 0.08 && e.ChurchTaxRate != 0.09 {
		return Invalidf("church_tax_rate", "must be 0.08 or 0.09, got %v", e.ChurchTaxRate)
	}
	if err := nonNegative("health_insurance_additional_rate", e.HealthInsuranceAdditionalRate); err != nil {
		return err
	}
	if e.HealthInsuranceAdditionalRate >= 0.1 {
		return Invalidf("health_insurance_additional_rate", "expected a fraction, got %v", e.HealthInsuranceAdditionalRate)
	}
	if e.Age < 0 || e.Age > 130 {
		return Invalidf("age", "out of range: %d", e.Age)
	}
	for i := range e.Employments {
		if err := e.Employments[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Employment) Validate() error {
	if e.EmployerID == "" {
		return Invalidf("employer_id", "required")
	}
	if err := nonNegative("gross_monthly", e.GrossMonthly); err != nil {
		return err
	}
	if err := nonNegative("weekly_hours", e.WeeklyHours); err != nil {
		return err
	}
	if !e.TaxClass.Valid() {
		return Invalidf("tax_class", "malformed tax class %d for employer %s", int(e.TaxClass), e.EmployerID)
	}
	if _, err := time.Parse(DateLayout, e.StartDate); err != nil {
		return Invalidf("start_date", "invalid date %q for employer %s", e.StartDate, e.EmployerID)
	}
	return nil
}

func (h HourCounts) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"hours.regular", h.Regular},
		{"hours.overtime", h.Overtime},
		{"hours.night", h.Night},
		{"hours.sunday", h.Sunday},
		{"hours.holiday", h.Holiday},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

func (s SurchargeScheme) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"surcharge.overtime", s.Overtime},
		{"surcharge.night", s.Night},
		{"surcharge.sunday", s.Sunday},
		{"surcharge.holiday", s.Holiday},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return Invalidf("period.month", "out of range: %d", p.Month)
	}
	if p.Year < 1 {
		return Invalidf("period.year", "out of range: %d", p.Year)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalidf(field, "not a finite number")
	}
	if v < 0 {
		return Invalidf(field, "must not be negative, got %v", v)
	}
	return nil
}
