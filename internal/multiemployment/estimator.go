package multiemployment

import (
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/tax"
)

// TaxEstimator estimates the annual tax of a single employment.
type TaxEstimator interface {
	Estimate(t *ratetable.RateTable, p tax.Params) (model.TaxBreakdown, error)
}

const (
	EstimatorStatutory = "statutory"
	EstimatorBracket   = "bracket"
)

// EstimatorByName returns the statutory estimator for an empty name.
func EstimatorByName(name string) (TaxEstimator, error) {
	switch name {
	case "", EstimatorStatutory:
		return StatutoryEstimator{}, nil
	case EstimatorBracket:
		return BracketEstimator{}, nil
	}
	return nil, model.Invalidf("estimator", "unknown tax estimator %q", name)
}

// StatutoryEstimator runs the full tariff of the tax calculator.
type StatutoryEstimator struct{}

func (StatutoryEstimator) Estimate(t *ratetable.RateTable, p tax.Params) (model.TaxBreakdown, error) {
	return tax.Calculate(t, p)
}

// BracketEstimator approximates the tariff with flat marginal brackets.
// Class VI loses the zero bracket, class III is split.
type BracketEstimator struct{}

func (BracketEstimator) Estimate(t *ratetable.RateTable, p tax.Params) (model.TaxBreakdown, error) {
	if err := p.Validate(); err != nil {
		return model.TaxBreakdown{}, err
	}
	b := t.EstimateBrackets
	zvE := tax.TaxableIncome(t, p.YearlyGross, p.TaxClass, p.Age)

	var incomeTax float64
	switch p.TaxClass {
	case model.TaxClassIII:
		incomeTax = 2 * bracketTax(money.FloorEuro(zvE/2), b)
	case model.TaxClassVI:
		if len(b.Cutoffs) > 1 {
			zvE += b.Cutoffs[1]
		}
		incomeTax = bracketTax(zvE, b)
	default:
		incomeTax = bracketTax(zvE, b)
	}
	incomeTax = money.FloorEuro(incomeTax)

	out := model.TaxBreakdown{
		IncomeTax:           money.Round(incomeTax),
		SolidaritySurcharge: tax.Solidarity(t, incomeTax, p.TaxClass),
	}
	if p.ChurchTax {
		out.ChurchTax = tax.Church(incomeTax, p.ChurchTaxRate)
	}
	return out, nil
}

// bracketTax walks the brackets from the top, taxing the slice of income
// above each cutoff with that bracket's rate.
func bracketTax(income float64, b ratetable.Brackets) float64 {
	var total float64
	for i := len(b.Cutoffs) - 1; i >= 0; i-- {
		if income > b.Cutoffs[i] {
			total += (income - b.Cutoffs[i]) * b.Rates[i]
			income = b.Cutoffs[i]
		}
	}
	return total
}
