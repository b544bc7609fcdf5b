package model

import "github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"

// TaxBreakdown holds monthly amounts unless stated otherwise.
type TaxBreakdown struct {
	IncomeTax           float64 `json:"income_tax"`
	SolidaritySurcharge float64 `json:"solidarity_surcharge"`
	ChurchTax           float64 `json:"church_tax"`
}

func (t TaxBreakdown) Total() float64 {
	return money.Sum(t.IncomeTax, t.SolidaritySurcharge, t.ChurchTax)
}

func (t TaxBreakdown) Add(o TaxBreakdown) TaxBreakdown {
	return TaxBreakdown{
		IncomeTax:           money.Sum(t.IncomeTax, o.IncomeTax),
		SolidaritySurcharge: money.Sum(t.SolidaritySurcharge, o.SolidaritySurcharge),
		ChurchTax:           money.Sum(t.ChurchTax, o.ChurchTax),
	}
}

type Contribution struct {
	Employee float64 `json:"employee"`
	Employer float64 `json:"employer"`
	Total    float64 `json:"total"`
}

func NewContribution(employee, employer float64) Contribution {
	return Contribution{Employee: employee, Employer: employer, Total: money.Sum(employee, employer)}
}

func (c Contribution) Add(o Contribution) Contribution {
	return NewContribution(money.Sum(c.Employee, o.Employee), money.Sum(c.Employer, o.Employer))
}

// SVBreakdown is the social insurance split per insurance type.
type SVBreakdown struct {
	Pension      Contribution `json:"pension"`
	Unemployment Contribution `json:"unemployment"`
	Health       Contribution `json:"health"`
	Care         Contribution `json:"care"`
}

func (s SVBreakdown) EmployeeTotal() float64 {
	return money.Sum(s.Pension.Employee, s.Unemployment.Employee, s.Health.Employee, s.Care.Employee)
}

func (s SVBreakdown) EmployerTotal() float64 {
	return money.Sum(s.Pension.Employer, s.Unemployment.Employer, s.Health.Employer, s.Care.Employer)
}

func (s SVBreakdown) Add(o SVBreakdown) SVBreakdown {
	return SVBreakdown{
		Pension:      s.Pension.Add(o.Pension),
		Unemployment: s.Unemployment.Add(o.Unemployment),
		Health:       s.Health.Add(o.Health),
		Care:         s.Care.Add(o.Care),
	}
}

// SalaryCalculationResult is the monthly payroll result for one employee.
//
// Net + TotalEmployeeDeductions == Gross and
// EmployerCost == Gross + TotalEmployerDeductions.
type SalaryCalculationResult struct {
	EmployeeID              string                 `json:"employee_id"`
	Period                  Period                 `json:"period"`
	Gross                   float64                `json:"gross"`
	Net                     float64                `json:"net"`
	Tax                     TaxBreakdown           `json:"tax"`
	SocialInsurance         SVBreakdown            `json:"social_insurance"`
	TotalEmployeeDeductions float64                `json:"total_employee_deductions"`
	TotalEmployerDeductions float64                `json:"total_employer_deductions"`
	EmployerCost            float64                `json:"employer_cost"`
	Overtime                *OvertimeCalculation   `json:"overtime,omitempty"`
	MultiEmployment         *MultiEmploymentResult `json:"multi_employment,omitempty"`
	Messages                []CalculationMessage   `json:"messages"`
}

type EmploymentResult struct {
	EmployerID         string       `json:"employer_id"`
	Gross              float64      `json:"gross"`
	ConfiguredTaxClass TaxClass     `json:"configured_tax_class"`
	TaxClass           TaxClass     `json:"tax_class"`
	IsMain             bool         `json:"is_main"`
	PensionBase        float64      `json:"pension_base"`
	HealthBase         float64      `json:"health_base"`
	SocialInsurance    SVBreakdown  `json:"social_insurance"`
	Tax                TaxBreakdown `json:"tax"`
	Net                float64      `json:"net"`
}

type MultiEmploymentResult struct {
	TotalGross      float64              `json:"total_gross"`
	TotalNet        float64              `json:"total_net"`
	MainEmployerID  string               `json:"main_employer_id"`
	Employments     []EmploymentResult   `json:"employments"`
	SocialInsurance SVBreakdown          `json:"social_insurance"`
	Tax             TaxBreakdown         `json:"tax"`
	Warnings        []CalculationMessage `json:"warnings"`
}

type OvertimeCalculation struct {
	Hours             HourCounts `json:"hours"`
	HourlyRate        float64    `json:"hourly_rate"`
	RegularPay        float64    `json:"regular_pay"`
	OvertimePay       float64    `json:"overtime_pay"`
	OvertimeSurcharge float64    `json:"overtime_surcharge"`
	NightBonus        float64    `json:"night_bonus"`
	SundayBonus       float64    `json:"sunday_bonus"`
	HolidayBonus      float64    `json:"holiday_bonus"`
	TotalGrossPay     float64    `json:"total_gross_pay"`
	// TaxFreeBonus and SVFreeBonus are the parts of the night, sunday and
	// holiday bonuses exempt under §3b EStG.
	TaxFreeBonus float64 `json:"tax_free_bonus"`
	SVFreeBonus  float64 `json:"sv_free_bonus"`
}

// Bonuses is the pay on top of the regular hours.
func (o OvertimeCalculation) Bonuses() float64 {
	return money.Sum(o.OvertimePay, o.NightBonus, o.SundayBonus, o.HolidayBonus)
}
