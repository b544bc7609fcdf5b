package engine

import (
	"fmt"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/multiemployment"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/overtime"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/socialinsurance"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/tax"
)

// RateSource resolves the rate table of a statutory year.
type RateSource interface {
	Rates(year int) (*ratetable.RateTable, error)
}

// Calculate computes the monthly payroll of one employee. It has no side
// effects and reads nothing but its arguments, so the same input always
// yields the same result and calls may run concurrently.
//
// The employee is validated as given, before any override or employment
// field replaces its values. With two or more employments the
// multi-employment rules apply; a single employment supplies gross and tax
// class unless overridden.
func Calculate(rates RateSource, employee model.Employee, period model.Period, overrides model.Overrides) (*model.SalaryCalculationResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	table, err := rates.Rates(period.Year)
	if err != nil {
		return nil, err
	}

	if err := employee.Validate(); err != nil {
		return nil, err
	}

	emp := employee
	if len(emp.Employments) > 1 {
		return calculateMulti(table, &emp, period, overrides)
	}
	if len(emp.Employments) == 1 {
		emp.GrossSalary = emp.Employments[0].GrossMonthly
		emp.TaxClass = emp.Employments[0].TaxClass
	}
	if overrides.GrossSalary != nil {
		emp.GrossSalary = *overrides.GrossSalary
	}
	if overrides.TaxClass != nil {
		emp.TaxClass = *overrides.TaxClass
	}
	emp.Employments = nil
	if err := emp.Validate(); err != nil {
		return nil, err
	}
	return calculateSingle(table, &emp, period, overrides)
}

func calculateSingle(t *ratetable.RateTable, emp *model.Employee, period model.Period, overrides model.Overrides) (*model.SalaryCalculationResult, error) {
	gross := emp.GrossSalary
	taxableGross, svGross := gross, gross

	var ot *model.OvertimeCalculation
	if overrides.Hours != nil {
		scheme, err := overtime.Resolve(overrides.SchemeName, overrides.Scheme)
		if err != nil {
			return nil, err
		}
		calc, err := overtime.Calculate(emp.GrossSalary, *overrides.Hours, scheme, t.TaxFreeSurcharges)
		if err != nil {
			return nil, err
		}
		ot = &calc
		gross = money.Sum(gross, calc.Bonuses())
		taxableGross = money.Sub(gross, calc.TaxFreeBonus)
		svGross = money.Sub(gross, calc.SVFreeBonus)
	}

	sv, err := socialinsurance.Calculate(t, socialinsurance.Params{
		Gross:          svGross,
		Age:            emp.Age,
		Region:         emp.Region(),
		Childless:      emp.IsChildless,
		AdditionalRate: emp.HealthInsuranceAdditionalRate,
	})
	if err != nil {
		return nil, err
	}

	yearly := money.NonNegative(money.Sub(money.Mul(taxableGross, 12), tax.PrecautionaryAllowance(sv)))
	annual, err := tax.Calculate(t, tax.Params{
		YearlyGross:     yearly,
		TaxClass:        emp.TaxClass,
		ChildAllowances: emp.ChildAllowances,
		ChurchTax:       emp.ChurchTax,
		ChurchTaxRate:   emp.ChurchTaxRate,
		Age:             emp.Age,
	})
	if err != nil {
		return nil, err
	}
	monthly := model.TaxBreakdown{
		IncomeTax:           money.Monthly(annual.IncomeTax),
		SolidaritySurcharge: money.Monthly(annual.SolidaritySurcharge),
		ChurchTax:           money.Monthly(annual.ChurchTax),
	}

	res := compose(emp.ID, period, gross, monthly, sv)
	res.Overtime = ot
	res.Messages = lowIncomeWarnings(t, gross)
	return res, nil
}

// calculateMulti applies a tax class override to the main employment only;
// gross and hour overrides cannot be attributed to one job and are rejected.
func calculateMulti(t *ratetable.RateTable, emp *model.Employee, period model.Period, overrides model.Overrides) (*model.SalaryCalculationResult, error) {
	if overrides.Hours != nil {
		return nil, model.Invalidf("overrides.hours", "hour based pay requires a single employment")
	}
	if overrides.GrossSalary != nil {
		return nil, model.Invalidf("overrides.gross_salary", "requires a single employment")
	}
	if overrides.TaxClass != nil {
		if !overrides.TaxClass.Valid() {
			return nil, model.Invalidf("overrides.tax_class", "malformed tax class %d", int(*overrides.TaxClass))
		}
		jobs := multiemployment.Order(emp.Employments)
		jobs[0].TaxClass = *overrides.TaxClass
		emp.Employments = jobs
	}

	estimator, err := multiemployment.EstimatorByName(overrides.Estimator)
	if err != nil {
		return nil, err
	}
	p := multiemployment.ParamsFor(emp)
	p.Estimator = estimator

	multi, err := multiemployment.Distribute(t, emp.Employments, p)
	if err != nil {
		return nil, err
	}

	res := compose(emp.ID, period, multi.TotalGross, multi.Tax, multi.SocialInsurance)
	res.MultiEmployment = multi
	res.Messages = append(res.Messages, multi.Warnings...)
	return res, nil
}

func compose(id string, period model.Period, gross float64, monthly model.TaxBreakdown, sv model.SVBreakdown) *model.SalaryCalculationResult {
	employeeDeductions := money.Sum(sv.EmployeeTotal(), monthly.Total())
	employerDeductions := sv.EmployerTotal()
	return &model.SalaryCalculationResult{
		EmployeeID:              id,
		Period:                  period,
		Gross:                   gross,
		Net:                     money.Sub(gross, employeeDeductions),
		Tax:                     monthly,
		SocialInsurance:         sv,
		TotalEmployeeDeductions: employeeDeductions,
		TotalEmployerDeductions: employerDeductions,
		EmployerCost:            money.Sum(gross, employerDeductions),
		Messages:                []model.CalculationMessage{},
	}
}

// lowIncomeWarnings flags minijob and midijob earnings. Their reduced and
// sliding contributions are not applied by this calculator.
func lowIncomeWarnings(t *ratetable.RateTable, gross float64) []model.CalculationMessage {
	msgs := []model.CalculationMessage{}
	switch {
	case gross > 0 && gross <= t.MinijobLimit:
		msgs = append(msgs, model.Warning(model.CodeMinijob,
			fmt.Sprintf("gross %.2f is within the minijob limit of %.2f", gross, t.MinijobLimit)))
	case gross > t.MinijobLimit && gross <= t.MidijobLimit:
		msgs = append(msgs, model.Warning(model.CodeMidijob,
			fmt.Sprintf("gross %.2f is within the midijob transition zone up to %.2f", gross, t.MidijobLimit)))
	}
	return msgs
}
