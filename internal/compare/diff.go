// Package compare reports the field level changes between two payroll
// results, e.g. the same employee in consecutive periods. Paths are JSON
// Pointers (RFC 6901) into the encoded result.
package compare

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
)

// Results diffs two results through their JSON form. Object keys are visited
// in sorted order and array elements by index, so the changes come in a
// deterministic order.
func Results(prev, curr *model.SalaryCalculationResult) ([]model.FieldChange, error) {
	a, err := decoded(prev)
	if err != nil {
		return nil, err
	}
	b, err := decoded(curr)
	if err != nil {
		return nil, err
	}
	changes := Diff(a, b, "")
	if changes == nil {
		changes = []model.FieldChange{}
	}
	return changes, nil
}

func decoded(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diff walks two decoded JSON documents. Numbers that differ carry their
// delta rounded to cents.
func Diff(a, b any, path string) []model.FieldChange {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		return []model.FieldChange{replaced(path, a, b)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if a != b {
		return []model.FieldChange{replaced(path, a, b)}
	}
	return nil
}

func diffObjects(a, b map[string]any, path string) []model.FieldChange {
	keys := lo.Union(lo.Keys(a), lo.Keys(b))
	sort.Strings(keys)

	var changes []model.FieldChange
	for _, k := range keys {
		childPath := path + "/" + escapeKey(k)
		av, inA := a[k]
		bv, inB := b[k]
		switch {
		case !inB:
			changes = append(changes, model.FieldChange{Op: model.ChangeRemoved, Path: childPath, Previous: av})
		case !inA:
			changes = append(changes, model.FieldChange{Op: model.ChangeAdded, Path: childPath, Current: bv})
		default:
			changes = append(changes, Diff(av, bv, childPath)...)
		}
	}
	return changes
}

func diffArrays(a, b []any, path string) []model.FieldChange {
	common := min(len(a), len(b))

	var changes []model.FieldChange
	for i := 0; i < common; i++ {
		changes = append(changes, Diff(a[i], b[i], path+"/"+strconv.Itoa(i))...)
	}
	for i := common; i < len(a); i++ {
		changes = append(changes, model.FieldChange{Op: model.ChangeRemoved, Path: path + "/" + strconv.Itoa(i), Previous: a[i]})
	}
	for i := common; i < len(b); i++ {
		changes = append(changes, model.FieldChange{Op: model.ChangeAdded, Path: path + "/" + strconv.Itoa(i), Current: b[i]})
	}
	return changes
}

func replaced(path string, a, b any) model.FieldChange {
	c := model.FieldChange{Op: model.ChangeReplaced, Path: path, Previous: a, Current: b}
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			d := money.Sub(y, x)
			c.Delta = &d
		}
	}
	return c
}

func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
