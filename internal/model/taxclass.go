package model

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// TaxClass is the statutory withholding category (Steuerklasse I-VI).
type TaxClass int

const (
	TaxClassI TaxClass = iota + 1
	TaxClassII
	TaxClassIII
	TaxClassIV
	TaxClassV
	TaxClassVI
)

var taxClassNames = [...]string{"", "I", "II", "III", "IV", "V", "VI"}

func (c TaxClass) Valid() bool {
	return c >= TaxClassI && c <= TaxClassVI
}

func (c TaxClass) String() string {
	if !c.Valid() {
		return "TaxClass(" + strconv.Itoa(int(c)) + ")"
	}
	return taxClassNames[c]
}

// ParseTaxClass accepts roman ("III") or arabic ("3") notation.
func ParseTaxClass(s string) (TaxClass, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := 1; i < len(taxClassNames); i++ {
		if s == taxClassNames[i] {
			return TaxClass(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && TaxClass(n).Valid() {
		return TaxClass(n), nil
	}
	return 0, Invalidf("tax_class", "malformed tax class %q", s)
}

func (c TaxClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(c))
}

// UnmarshalJSON accepts both 3 and "III".
func (c *TaxClass) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = TaxClass(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return Invalidf("tax_class", "malformed tax class %s", string(data))
	}
	parsed, err := ParseTaxClass(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalCSV lets gocsv decode the same notations.
func (c *TaxClass) UnmarshalCSV(s string) error {
	parsed, err := ParseTaxClass(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
