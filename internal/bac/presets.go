package bac

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const presetsPathEnv = "BAC_PRESETS_YAML"

//go:embed presets.yaml
var embeddedPresets []byte

// BeerTypePreset is a catalog entry shipped with the service.
type BeerTypePreset struct {
	Name string  `yaml:"name" json:"name"`
	ABV  float64 `yaml:"abv" json:"abv,omitempty"`
}

// Presets are the tunables loaded from YAML.
type Presets struct {
	Version    int `yaml:"version"`
	Physiology struct {
		Default  string                `yaml:"default"`
		Profiles map[string]Physiology `yaml:"profiles"`
	} `yaml:"physiology"`
	Sampling struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"sampling"`
	BACRanges         RangeSet          `yaml:"bac_ranges"`
	ConsumptionRanges RangeSet          `yaml:"consumption_ranges"`
	StatusThresholds  []StatusThreshold `yaml:"status_thresholds"`
	DefaultABV        float64           `yaml:"default_abv"`
	CommonSizesML     []int             `yaml:"common_sizes_ml"`
	BeerTypes         []BeerTypePreset  `yaml:"beer_types"`
}

// Profile returns the named physiology profile, or the default profile when
// name is empty.
func (p *Presets) Profile(name string) (Physiology, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = p.Physiology.Default
	}
	prof, ok := p.Physiology.Profiles[name]
	if !ok {
		return Physiology{}, invalid("profile", "unknown physiology profile %q", name)
	}
	return prof.WithDefaults(), nil
}

func (p *Presets) IntervalMinutes() int {
	if p.Sampling.IntervalMinutes > 0 {
		return p.Sampling.IntervalMinutes
	}
	return DefaultIntervalMinutes
}

func (p *Presets) Status(bac float64) SobrietyStatus {
	return Classify(bac, p.StatusThresholds)
}

// ParsePresets decodes and checks a presets document.
func ParsePresets(raw []byte) (*Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if len(p.Physiology.Profiles) == 0 {
		return nil, fmt.Errorf("presets: no physiology profiles")
	}
	for name, prof := range p.Physiology.Profiles {
		if err := prof.WithDefaults().Validate(); err != nil {
			return nil, fmt.Errorf("presets: profile %s: %w", name, err)
		}
	}
	if _, ok := p.Physiology.Profiles[p.Physiology.Default]; !ok {
		return nil, fmt.Errorf("presets: default profile %q not defined", p.Physiology.Default)
	}
	if _, err := p.BACRanges.Resolve(""); err != nil {
		return nil, fmt.Errorf("presets: bac_ranges: %w", err)
	}
	if _, err := p.ConsumptionRanges.Resolve(""); err != nil {
		return nil, fmt.Errorf("presets: consumption_ranges: %w", err)
	}
	return &p, nil
}

var (
	presetsOnce sync.Once
	presets     *Presets
	presetsErr  error
)

// LoadPresets reads BAC_PRESETS_YAML when set, the embedded document
// otherwise. The result is cached for the process lifetime.
func LoadPresets() (*Presets, error) {
	presetsOnce.Do(func() {
		raw := embeddedPresets
		if path := strings.TrimSpace(os.Getenv(presetsPathEnv)); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				presetsErr = fmt.Errorf("read %s: %w", path, err)
				return
			}
			raw = b
		}
		presets, presetsErr = ParsePresets(raw)
	})
	return presets, presetsErr
}

// DefaultPresets decodes the embedded document. It panics only if the
// shipped YAML is broken.
func DefaultPresets() *Presets {
	p, err := ParsePresets(embeddedPresets)
	if err != nil {
		panic(err)
	}
	return p
}
