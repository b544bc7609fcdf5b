package ratetable

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

func TestDefaultProviderHasEmbeddedYears(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025}, p.Years())

	t24, err := p.Rates(2024)
	require.NoError(t, err)
	assert.Equal(t, 7550.0, t24.PensionCeiling(model.RegionWest))
	assert.Equal(t, 7450.0, t24.PensionCeiling(model.RegionEast))
	assert.Equal(t, 5175.0, t24.HealthCeiling())
	assert.Equal(t, 0.006, t24.SocialInsurance.CareChildlessSurcharge)
	assert.Len(t, t24.IncomeTax.Zones, 4)

	t25, err := p.Rates(2025)
	require.NoError(t, err)
	assert.Equal(t, t25.PensionCeiling(model.RegionWest), t25.PensionCeiling(model.RegionEast))
}

func TestUnknownYear(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	_, err = p.Rates(1999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownYear))

	var yearErr *UnknownYearError
	require.True(t, errors.As(err, &yearErr))
	assert.Equal(t, 1999, yearErr.Year)
}

func TestRegisterIsCopyOnWrite(t *testing.T) {
	base, err := LoadEmbedded()
	require.NoError(t, err)
	p, err := NewProvider(base...)
	require.NoError(t, err)

	t24, err := p.Rates(2024)
	require.NoError(t, err)
	gen := p.Generation()
	assert.Equal(t, uint64(len(base)), gen)

	next := *t24
	next.Year = 2026
	next.MinimumWage = 13.90
	require.NoError(t, p.Register(&next))

	t26, err := p.Rates(2026)
	require.NoError(t, err)
	assert.Equal(t, 13.90, t26.MinimumWage)
	assert.Equal(t, gen+1, p.Generation())

	again, err := p.Rates(2024)
	require.NoError(t, err)
	assert.Same(t, t24, again)
	assert.Equal(t, 12.41, again.MinimumWage)
}

func TestConcurrentRegisterAndRead(t *testing.T) {
	base, err := LoadEmbedded()
	require.NoError(t, err)
	p, err := NewProvider(base...)
	require.NoError(t, err)
	t24, _ := p.Rates(2024)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(year int) {
			defer wg.Done()
			next := *t24
			next.Year = year
			assert.NoError(t, p.Register(&next))
		}(3000 + i)
		go func() {
			defer wg.Done()
			_, err := p.Rates(2024)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, p.Years(), 22)
	assert.Equal(t, uint64(22), p.Generation())
}

func TestRegisterRejectsInvalidTable(t *testing.T) {
	p, err := NewProvider()
	require.NoError(t, err)
	assert.Error(t, p.Register(&RateTable{Year: 2030}))
	assert.Zero(t, p.Generation())
	assert.Error(t, p.Register(nil))
}

func TestLoadDir(t *testing.T) {
	data, err := embedded.ReadFile("data/2025.yaml")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025.yaml"), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o600))

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 2025, tables[0].Year)
	assert.Equal(t, 5512.50, tables[0].HealthCeiling())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("year: 2024\nbogus: 1\n"))
	assert.Error(t, err)
}
