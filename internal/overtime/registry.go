package overtime

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

//go:embed schemes.yaml
var schemesYAML []byte

const DefaultScheme = "general"

var registry = mustLoad(schemesYAML)

func mustLoad(data []byte) map[string]model.SurchargeScheme {
	schemes, err := ParseSchemes(data)
	if err != nil {
		panic(err)
	}
	return schemes
}

// ParseSchemes decodes a YAML list of surcharge schemes keyed by name.
func ParseSchemes(data []byte) (map[string]model.SurchargeScheme, error) {
	var list []model.SurchargeScheme
	if err := yaml.UnmarshalStrict(data, &list); err != nil {
		return nil, fmt.Errorf("surcharge schemes: %w", err)
	}
	out := make(map[string]model.SurchargeScheme, len(list))
	for _, s := range list {
		if s.Name == "" {
			return nil, fmt.Errorf("surcharge schemes: scheme without name")
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("surcharge scheme %s: %w", s.Name, err)
		}
		out[s.Name] = s
	}
	return out, nil
}

func Get(name string) (model.SurchargeScheme, bool) {
	s, ok := registry[name]
	return s, ok
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the explicit scheme if given, else the named one, else the
// general scheme.
func Resolve(name string, explicit *model.SurchargeScheme) (model.SurchargeScheme, error) {
	if explicit != nil {
		if err := explicit.Validate(); err != nil {
			return model.SurchargeScheme{}, err
		}
		return *explicit, nil
	}
	if name == "" {
		name = DefaultScheme
	}
	s, ok := Get(name)
	if !ok {
		return model.SurchargeScheme{}, model.Invalidf("scheme", "unknown surcharge scheme %q", name)
	}
	return s, nil
}
