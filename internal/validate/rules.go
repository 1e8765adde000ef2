// Package validate implements the cross-validation battery: a fixed set of
// independent arithmetic, temporal, range, and completeness checks that
// annotate a merged record with warnings without ever mutating it.
package validate

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the configurable plausibility bounds. Zero values are filled
// from defaults at load time.
type Rules struct {
	// Per-period gross pay bounds for paystubs.
	GrossPayMin float64 `yaml:"gross_pay_min"`
	GrossPayMax float64 `yaml:"gross_pay_max"`
	// Hourly rate bounds for earning rows that carry a rate.
	HourlyRateMin float64 `yaml:"hourly_rate_min"`
	HourlyRateMax float64 `yaml:"hourly_rate_max"`
	// Annual wage bounds for W-2 Box 1.
	AnnualWagesMin float64 `yaml:"annual_wages_min"`
	AnnualWagesMax float64 `yaml:"annual_wages_max"`
	// Accepted tax-year window for W-2s.
	TaxYearMin int `yaml:"tax_year_min"`
	TaxYearMax int `yaml:"tax_year_max"`
}

// DefaultRules returns the built-in plausibility bounds.
func DefaultRules() Rules {
	return Rules{
		GrossPayMin:    100,
		GrossPayMax:    50000,
		HourlyRateMin:  5,
		HourlyRateMax:  500,
		AnnualWagesMin: 1000,
		AnnualWagesMax: 5000000,
		TaxYearMin:     1990,
		TaxYearMax:     2100,
	}
}

// LoadRules reads bounds from a YAML file, filling unset values from the
// defaults. An empty path returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, eris.Wrapf(err, "validate: read rules file %s", path)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return rules, eris.Wrapf(err, "validate: parse rules file %s", path)
	}

	merge := func(dst *float64, src float64) {
		if src != 0 {
			*dst = src
		}
	}
	merge(&rules.GrossPayMin, loaded.GrossPayMin)
	merge(&rules.GrossPayMax, loaded.GrossPayMax)
	merge(&rules.HourlyRateMin, loaded.HourlyRateMin)
	merge(&rules.HourlyRateMax, loaded.HourlyRateMax)
	merge(&rules.AnnualWagesMin, loaded.AnnualWagesMin)
	merge(&rules.AnnualWagesMax, loaded.AnnualWagesMax)
	if loaded.TaxYearMin != 0 {
		rules.TaxYearMin = loaded.TaxYearMin
	}
	if loaded.TaxYearMax != 0 {
		rules.TaxYearMax = loaded.TaxYearMax
	}

	return rules, nil
}
