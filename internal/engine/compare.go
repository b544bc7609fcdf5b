package engine

import (
	"fmt"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/compare"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

// Compare calculates both requests and lists what changed from previous to
// current.
func Compare(rates RateSource, req *model.CompareRequest) (*model.CompareResponse, error) {
	prev, err := Calculate(rates, req.Previous.Employee, req.Previous.Period, req.Previous.Overrides)
	if err != nil {
		return nil, fmt.Errorf("previous: %w", err)
	}
	curr, err := Calculate(rates, req.Current.Employee, req.Current.Period, req.Current.Overrides)
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}

	changes, err := compare.Results(prev, curr)
	if err != nil {
		return nil, err
	}
	return &model.CompareResponse{Previous: prev, Current: curr, Changes: changes}, nil
}
