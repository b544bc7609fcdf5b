package main

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

// summaryRow is one line of the batch CSV export. Failed employees carry
// only their id and the error.
type summaryRow struct {
	EmployeeID          string  `csv:"employee_id"`
	Gross               float64 `csv:"gross"`
	IncomeTax           float64 `csv:"income_tax"`
	SolidaritySurcharge float64 `csv:"solidarity_surcharge"`
	ChurchTax           float64 `csv:"church_tax"`
	SVEmployee          float64 `csv:"sv_employee"`
	SVEmployer          float64 `csv:"sv_employer"`
	Net                 float64 `csv:"net"`
	EmployerCost        float64 `csv:"employer_cost"`
	Error               string  `csv:"error"`
}

func summaryRows(resp model.BatchResponse) []summaryRow {
	rows := make([]summaryRow, 0, len(resp.Results)+len(resp.Failures))
	for _, r := range resp.Results {
		rows = append(rows, summaryRow{
			EmployeeID:          r.EmployeeID,
			Gross:               r.Gross,
			IncomeTax:           r.Tax.IncomeTax,
			SolidaritySurcharge: r.Tax.SolidaritySurcharge,
			ChurchTax:           r.Tax.ChurchTax,
			SVEmployee:          r.SocialInsurance.EmployeeTotal(),
			SVEmployer:          r.SocialInsurance.EmployerTotal(),
			Net:                 r.Net,
			EmployerCost:        r.EmployerCost,
		})
	}
	for _, f := range resp.Failures {
		rows = append(rows, summaryRow{EmployeeID: f.EmployeeID, Error: f.Error})
	}
	return rows
}

func writeSummaryCSV(w io.Writer, resp model.BatchResponse) error {
	return gocsv.Marshal(summaryRows(resp), w)
}
