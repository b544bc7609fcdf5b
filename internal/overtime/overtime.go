// Package overtime turns categorized worked hours into surcharge pay.
package overtime

import (
	"math"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

// AverageMonthHours is the average number of working hours per month
// (40 h * 52 / 12).
const AverageMonthHours = 173.33

func HourlyRate(monthlyGross float64) float64 {
	return monthlyGross / AverageMonthHours
}

// Calculate derives the hourly rate from the monthly gross.
func Calculate(monthlyGross float64, hours model.HourCounts, scheme model.SurchargeScheme, limits ratetable.TaxFreeSurcharges) (model.OvertimeCalculation, error) {
	if monthlyGross < 0 || math.IsNaN(monthlyGross) {
		return model.OvertimeCalculation{}, model.Invalidf("monthly_gross", "must not be negative, got %v", monthlyGross)
	}
	return CalculateForRate(HourlyRate(monthlyGross), hours, scheme, limits)
}

func CalculateForRate(rate float64, hours model.HourCounts, scheme model.SurchargeScheme, limits ratetable.TaxFreeSurcharges) (model.OvertimeCalculation, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return model.OvertimeCalculation{}, model.Invalidf("hourly_rate", "must be a non-negative number, got %v", rate)
	}
	if err := hours.Validate(); err != nil {
		return model.OvertimeCalculation{}, err
	}
	if err := scheme.Validate(); err != nil {
		return model.OvertimeCalculation{}, err
	}

	c := model.OvertimeCalculation{
		Hours:             hours,
		HourlyRate:        money.Round(rate),
		RegularPay:        money.Round(hours.Regular * rate),
		OvertimePay:       money.Apply(hours.Overtime*rate, 1, scheme.Overtime),
		OvertimeSurcharge: money.Apply(hours.Overtime*rate, scheme.Overtime),
		NightBonus:        money.Apply(hours.Night*rate, scheme.Night),
		SundayBonus:       money.Apply(hours.Sunday*rate, scheme.Sunday),
		HolidayBonus:      money.Apply(hours.Holiday*rate, scheme.Holiday),
	}
	c.TotalGrossPay = money.Sum(c.RegularPay, c.OvertimePay, c.NightBonus, c.SundayBonus, c.HolidayBonus)
	c.TaxFreeBonus = exempt(rate, limits.BaseRateCap, hours, scheme, limits)
	c.SVFreeBonus = exempt(rate, limits.SVBaseRateCap, hours, scheme, limits)
	return c, nil
}

// exempt is the part of the night, sunday and holiday bonuses that stays
// within the §3b percentages on a base rate capped at baseCap.
func exempt(rate, baseCap float64, hours model.HourCounts, scheme model.SurchargeScheme, limits ratetable.TaxFreeSurcharges) float64 {
	if baseCap <= 0 {
		return 0
	}
	base := math.Min(rate, baseCap)
	return money.Sum(
		money.Apply(hours.Night*base, math.Min(scheme.Night, limits.Night)),
		money.Apply(hours.Sunday*base, math.Min(scheme.Sunday, limits.Sunday)),
		money.Apply(hours.Holiday*base, math.Min(scheme.Holiday, limits.Holiday)),
	)
}
