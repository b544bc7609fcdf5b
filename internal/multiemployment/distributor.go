// Package multiemployment handles one person holding several concurrent
// employments: it identifies the main employment, forces tax class VI on
// every other one and shares the contribution ceilings between them.
package multiemployment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/socialinsurance"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/tax"
)

var ErrNoEmployment = errors.New("no employment")

// WeeksPerMonth converts weekly hours into monthly hours.
const WeeksPerMonth = 52.0 / 12.0

// Params carry the person level attributes shared by all employments.
type Params struct {
	Age             int
	Region          model.Region
	Childless       bool
	AdditionalRate  float64
	ChildAllowances float64
	ChurchTax       bool
	ChurchTaxRate   float64
	Estimator       TaxEstimator
}

func ParamsFor(e *model.Employee) Params {
	return Params{
		Age:             e.Age,
		Region:          e.Region(),
		Childless:       e.IsChildless,
		AdditionalRate:  e.HealthInsuranceAdditionalRate,
		ChildAllowances: e.ChildAllowances,
		ChurchTax:       e.ChurchTax,
		ChurchTaxRate:   e.ChurchTaxRate,
	}
}

// Order sorts a copy of employments by gross descending, then start date
// ascending, then employer id. The first element is the main employment.
func Order(employments []model.Employment) []model.Employment {
	out := append([]model.Employment(nil), employments...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.GrossMonthly != b.GrossMonthly {
			return a.GrossMonthly > b.GrossMonthly
		}
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.EmployerID < b.EmployerID
	})
	return out
}

// ShareCeiling returns the assessable base of each gross. Above the ceiling
// the bases are proportional to the gross shares and sum to the ceiling
// exactly; the cent remainder goes to the first (main) entry.
func ShareCeiling(grosses []float64, ceiling float64) []float64 {
	total := money.Sum(grosses...)
	bases := make([]float64, len(grosses))
	if total <= ceiling {
		copy(bases, grosses)
		return bases
	}
	for i := 1; i < len(grosses); i++ {
		bases[i] = money.Round(ceiling * grosses[i] / total)
	}
	if len(grosses) > 0 {
		bases[0] = money.Sub(ceiling, bases[1:]...)
	}
	return bases
}

// Distribute computes the complete multi-employment result. The whole set is
// processed on every call because each base depends on the total gross.
func Distribute(t *ratetable.RateTable, employments []model.Employment, p Params) (*model.MultiEmploymentResult, error) {
	if len(employments) == 0 {
		return nil, ErrNoEmployment
	}
	for i := range employments {
		if err := employments[i].Validate(); err != nil {
			return nil, err
		}
	}
	estimator := p.Estimator
	if estimator == nil {
		estimator = StatutoryEstimator{}
	}

	ordered := Order(employments)
	grosses := lo.Map(ordered, func(e model.Employment, _ int) float64 { return e.GrossMonthly })
	totalGross := money.Sum(grosses...)
	pensionBases := ShareCeiling(grosses, t.PensionCeiling(p.Region))
	healthBases := ShareCeiling(grosses, t.HealthCeiling())

	res := &model.MultiEmploymentResult{
		TotalGross:     totalGross,
		MainEmployerID: ordered[0].EmployerID,
		Employments:    make([]model.EmploymentResult, 0, len(ordered)),
		Warnings:       []model.CalculationMessage{},
	}
	if totalGross > t.PensionCeiling(p.Region) || totalGross > t.HealthCeiling() {
		res.Warnings = append(res.Warnings, model.Warning(model.CodeBBGDistributed,
			fmt.Sprintf("total gross %.2f exceeds a contribution ceiling, bases distributed proportionally", totalGross)))
	}

	for i, e := range ordered {
		main := i == 0
		class := e.TaxClass
		if !main {
			if class != model.TaxClassVI {
				res.Warnings = append(res.Warnings, model.Warning(model.CodeTaxClassOverridden,
					fmt.Sprintf("secondary employment %s taxed in class VI instead of %s", e.EmployerID, class)))
			}
			class = model.TaxClassVI
			if e.GrossMonthly <= t.MinijobLimit {
				res.Warnings = append(res.Warnings, model.Warning(model.CodeMinijobSecondary,
					fmt.Sprintf("secondary employment %s is within the minijob limit of %.2f", e.EmployerID, t.MinijobLimit)))
			}
		}
		if floor := minimumWageGross(t, e.WeeklyHours); e.GrossMonthly < floor {
			res.Warnings = append(res.Warnings, model.Warning(model.CodeBelowMinimumWage,
				fmt.Sprintf("employment %s pays %.2f, minimum wage requires %.2f", e.EmployerID, e.GrossMonthly, floor)))
		}

		sv := socialinsurance.OnBases(t,
			socialinsurance.Bases{Pension: pensionBases[i], Health: healthBases[i]},
			socialinsurance.Params{Age: p.Age, Region: p.Region, Childless: p.Childless, AdditionalRate: p.AdditionalRate})

		tp := tax.Params{
			YearlyGross:   money.Mul(e.GrossMonthly, 12),
			TaxClass:      class,
			ChurchTax:     p.ChurchTax,
			ChurchTaxRate: p.ChurchTaxRate,
			Age:           p.Age,
		}
		if main {
			tp.YearlyGross = money.NonNegative(money.Sub(tp.YearlyGross, tax.PrecautionaryAllowance(sv)))
			tp.ChildAllowances = p.ChildAllowances
		}
		yearly, err := estimator.Estimate(t, tp)
		if err != nil {
			return nil, err
		}
		monthly := model.TaxBreakdown{
			IncomeTax:           money.Monthly(yearly.IncomeTax),
			SolidaritySurcharge: money.Monthly(yearly.SolidaritySurcharge),
			ChurchTax:           money.Monthly(yearly.ChurchTax),
		}

		res.Employments = append(res.Employments, model.EmploymentResult{
			EmployerID:         e.EmployerID,
			Gross:              e.GrossMonthly,
			ConfiguredTaxClass: e.TaxClass,
			TaxClass:           class,
			IsMain:             main,
			PensionBase:        pensionBases[i],
			HealthBase:         healthBases[i],
			SocialInsurance:    sv,
			Tax:                monthly,
			Net:                money.Sub(e.GrossMonthly, sv.EmployeeTotal(), monthly.Total()),
		})
	}

	res.SocialInsurance = lo.Reduce(res.Employments, func(acc model.SVBreakdown, r model.EmploymentResult, _ int) model.SVBreakdown {
		return acc.Add(r.SocialInsurance)
	}, model.SVBreakdown{})
	res.Tax = lo.Reduce(res.Employments, func(acc model.TaxBreakdown, r model.EmploymentResult, _ int) model.TaxBreakdown {
		return acc.Add(r.Tax)
	}, model.TaxBreakdown{})
	res.TotalNet = money.Sum(lo.Map(res.Employments, func(r model.EmploymentResult, _ int) float64 { return r.Net })...)
	return res, nil
}

func minimumWageGross(t *ratetable.RateTable, weeklyHours float64) float64 {
	return money.Round(weeklyHours * WeeksPerMonth * t.MinimumWage)
}
