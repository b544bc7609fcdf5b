// Package tax computes annual wage tax, solidarity surcharge and church tax
// from the §32a EStG tariff held in a rate table.
package tax

import (
	"math"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

// Params describe one annual tax assessment. YearlyGross is the yearly
// taxable gross before the class dependent allowances.
type Params struct {
	YearlyGross     float64
	TaxClass        model.TaxClass
	ChildAllowances float64
	ChurchTax       bool
	ChurchTaxRate   float64
	Age             int
}

func (p Params) Validate() error {
	if p.YearlyGross < 0 || math.IsNaN(p.YearlyGross) || math.IsInf(p.YearlyGross, 0) {
		return model.Invalidf("yearly_gross", "must be a non-negative number, got %v", p.YearlyGross)
	}
	if !p.TaxClass.Valid() {
		return model.Invalidf("tax_class", "malformed tax class %d", int(p.TaxClass))
	}
	if p.ChildAllowances < 0 {
		return model.Invalidf("child_allowances", "must not be negative, got %v", p.ChildAllowances)
	}
	if p.ChurchTax && p.ChurchTaxRate != 0.08 && p.ChurchTaxRate != 0.09 {
		return model.Invalidf("church_tax_rate", "must be 0.08 or 0.09, got %v", p.ChurchTaxRate)
	}
	return nil
}

// Calculate returns the annual tax breakdown.
func Calculate(t *ratetable.RateTable, p Params) (model.TaxBreakdown, error) {
	if err := p.Validate(); err != nil {
		return model.TaxBreakdown{}, err
	}

	zvE := TaxableIncome(t, p.YearlyGross, p.TaxClass, p.Age)
	if hasBasicAllowance(p.TaxClass) && zvE <= t.IncomeTax.BasicAllowance {
		return model.TaxBreakdown{}, nil
	}

	incomeTax := IncomeTax(t, zvE, p.TaxClass)

	// Child allowances only lower the base of the surcharges.
	base := incomeTax
	if p.ChildAllowances > 0 && hasBasicAllowance(p.TaxClass) {
		reduced := money.FloorEuro(money.NonNegative(zvE - p.ChildAllowances*t.IncomeTax.ChildAllowance))
		base = IncomeTax(t, reduced, p.TaxClass)
	}

	var church float64
	if p.ChurchTax {
		church = Church(base, p.ChurchTaxRate)
	}

	return model.TaxBreakdown{
		IncomeTax:           money.Round(incomeTax),
		SolidaritySurcharge: Solidarity(t, base, p.TaxClass),
		ChurchTax:           church,
	}, nil
}

// TaxableIncome subtracts the flat allowances of the tax class and the old
// age relief, truncated to whole euros. Class VI gets no flat allowances.
func TaxableIncome(t *ratetable.RateTable, yearlyGross float64, class model.TaxClass, age int) float64 {
	it := t.IncomeTax
	var allowances float64
	if r := it.OldAgeRelief; r.MinAge > 0 && age >= r.MinAge {
		allowances = math.Min(yearlyGross*r.Rate, r.Max)
	}
	switch class {
	case model.TaxClassVI:
	case model.TaxClassII:
		allowances += it.EmployeeAllowance + it.SpecialExpensesAllowance + it.SingleParentRelief
	default:
		allowances += it.EmployeeAllowance + it.SpecialExpensesAllowance
	}
	return money.FloorEuro(money.NonNegative(yearlyGross - allowances))
}

// IncomeTax applies the tariff variant of the class to a taxable income.
func IncomeTax(t *ratetable.RateTable, zvE float64, class model.TaxClass) float64 {
	switch class {
	case model.TaxClassIII:
		return 2 * Tariff(t, money.FloorEuro(zvE/2))
	case model.TaxClassV, model.TaxClassVI:
		return classVVI(t, zvE)
	default:
		return Tariff(t, zvE)
	}
}

// Tariff is the basic §32a formula, truncated to whole euros.
func Tariff(t *ratetable.RateTable, zvE float64) float64 {
	it := t.IncomeTax
	if zvE <= it.BasicAllowance {
		return 0
	}
	zone := it.Zones[0]
	for _, z := range it.Zones {
		if zvE > z.From {
			zone = z
		}
	}
	var tax float64
	if zone.Linear() {
		tax = zone.Rate*zvE - zone.C
	} else {
		q := (zvE - zone.From) / 10000
		tax = (zone.A*q+zone.B)*q + zone.C
	}
	return money.FloorEuro(money.NonNegative(tax))
}

// classVVI follows §39b(2) sentence 7: twice the difference of the tariff
// at 125 % and 75 % of the income, at least the minimum rate, with the upper
// rates applied above W1/W2/W3.
func classVVI(t *ratetable.RateTable, x float64) float64 {
	c := t.IncomeTax.ClassVVI
	var st float64
	switch {
	case x > c.W2:
		st = splitDiff(t, c.W2)
		if x > c.W3 {
			st += (c.W3-c.W2)*c.UpperRate + (x-c.W3)*c.TopRate
		} else {
			st += (x - c.W2) * c.UpperRate
		}
	case x > c.W1:
		st = splitDiff(t, x)
		high := splitDiff(t, c.W1) + (x-c.W1)*c.UpperRate
		if high < st {
			st = high
		}
	default:
		st = splitDiff(t, x)
	}
	return money.FloorEuro(st)
}

func splitDiff(t *ratetable.RateTable, x float64) float64 {
	diff := 2 * (Tariff(t, money.FloorEuro(x*1.25)) - Tariff(t, money.FloorEuro(x*0.75)))
	minimum := money.FloorEuro(x * t.IncomeTax.ClassVVI.MinRate)
	return math.Max(diff, minimum)
}

// Solidarity is 5.5 % of the income tax once it exceeds the exemption
// threshold, capped by the mitigation rate on the excess. Below the
// threshold it is 0.
func Solidarity(t *ratetable.RateTable, incomeTax float64, class model.TaxClass) float64 {
	s := t.Solidarity
	threshold := s.Threshold
	if class == model.TaxClassIII {
		threshold *= 2
	}
	if incomeTax <= threshold {
		return 0
	}
	full := incomeTax * s.Rate
	if s.MitigationRate > 0 {
		full = math.Min(full, (incomeTax-threshold)*s.MitigationRate)
	}
	return money.Round(money.NonNegative(full))
}

func Church(incomeTax, rate float64) float64 {
	return money.Round(incomeTax * rate)
}

func hasBasicAllowance(class model.TaxClass) bool {
	return class != model.TaxClassV && class != model.TaxClassVI
}

// PrecautionaryAllowance approximates the Vorsorgepauschale as the yearly
// employee share of pension, health and care insurance.
func PrecautionaryAllowance(sv model.SVBreakdown) float64 {
	return money.Mul(money.Sum(sv.Pension.Employee, sv.Health.Employee, sv.Care.Employee), 12)
}
