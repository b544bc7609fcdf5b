package model

type CalculationRequest struct {
	Employee  Employee  `json:"employee"`
	Period    Period    `json:"period"`
	Overrides Overrides `json:"overrides"`
}

type BatchRequest struct {
	Period    Period     `json:"period"`
	Employees []Employee `json:"employees"`
	FailFast  bool       `json:"fail_fast"`
}

type MultiEmploymentRequest struct {
	Employee  Employee `json:"employee"`
	Year      int      `json:"year"`
	Estimator string   `json:"estimator,omitempty"`
}

type OvertimeRequest struct {
	MonthlyGross float64          `json:"monthly_gross"`
	Hours        HourCounts       `json:"hours"`
	SchemeName   string           `json:"scheme,omitempty"`
	Scheme       *SurchargeScheme `json:"surcharge_scheme,omitempty"`
	Year         int              `json:"year"`
}

// CompareRequest holds two calculations to diff, typically the same
// employee in two periods.
type CompareRequest struct {
	Previous CalculationRequest `json:"previous"`
	Current  CalculationRequest `json:"current"`
}
