package ratetable

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v2"
)

//go:embed data/*.yaml
var embedded embed.FS

// Provider hands out year-keyed rate tables. The registered set is replaced
// as a whole on every Register, so readers never observe a partial update.
type Provider struct {
	tables     atomic.Pointer[map[int]*RateTable]
	generation atomic.Uint64
}

func NewProvider(tables ...*RateTable) (*Provider, error) {
	p := &Provider{}
	empty := map[int]*RateTable{}
	p.tables.Store(&empty)
	for _, t := range tables {
		if err := p.Register(t); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var (
	defaultOnce     sync.Once
	defaultProvider *Provider
	defaultErr      error
)

// Default returns the process-wide provider built from the embedded tables.
func Default() (*Provider, error) {
	defaultOnce.Do(func() {
		var tables []*RateTable
		tables, defaultErr = LoadEmbedded()
		if defaultErr != nil {
			return
		}
		defaultProvider, defaultErr = NewProvider(tables...)
	})
	return defaultProvider, defaultErr
}

// Rates returns the table for the given statutory year.
func (p *Provider) Rates(year int) (*RateTable, error) {
	t, ok := (*p.tables.Load())[year]
	if !ok {
		return nil, &UnknownYearError{Year: year}
	}
	return t, nil
}

// Register publishes t, replacing any table of the same year.
func (p *Provider) Register(t *RateTable) error {
	if t == nil {
		return fmt.Errorf("rate table: nil table")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	for {
		cur := p.tables.Load()
		next := make(map[int]*RateTable, len(*cur)+1)
		for y, v := range *cur {
			next[y] = v
		}
		next[t.Year] = t
		if p.tables.CompareAndSwap(cur, &next) {
			p.generation.Add(1)
			return nil
		}
	}
}

// Generation counts successful Register calls. It changes whenever any
// table is added or replaced.
func (p *Provider) Generation() uint64 {
	return p.generation.Load()
}

func (p *Provider) Years() []int {
	cur := *p.tables.Load()
	years := make([]int, 0, len(cur))
	for y := range cur {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func Parse(data []byte) (*RateTable, error) {
	var t RateTable
	if err := yaml.UnmarshalStrict(data, &t); err != nil {
		return nil, fmt.Errorf("rate table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func LoadEmbedded() ([]*RateTable, error) {
	entries, err := embedded.ReadDir("data")
	if err != nil {
		return nil, err
	}
	tables := make([]*RateTable, 0, len(entries))
	for _, e := range entries {
		data, err := embedded.ReadFile("data/" + e.Name())
		if err != nil {
			return nil, err
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadDir reads every *.yaml file of dir as a rate table.
func LoadDir(dir string) ([]*RateTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var tables []*RateTable
	for _, e := range entries {
		if e.IsDir() || !(strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
