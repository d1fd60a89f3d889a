package analysis

import (
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Params holds the analyzer tunables that operators most often want to
// adjust without a rebuild. Everything has a sensible default; a YAML
// file pointed at by VERITY_PARAMS_PATH overrides it.
type Params struct {
	// ELAQuality is the JPEG quality used for error level analysis.
	ELAQuality int `yaml:"ela_quality"`

	// MaxFaces is the face count above which the symmetry analyzer adds
	// a crowd penalty.
	MaxFaces int `yaml:"max_faces"`

	// FrequencyRings is the number of radial bands in the spectrum scan.
	FrequencyRings int `yaml:"frequency_rings"`

	// GenerativeDimensions lists exact width x height pairs that common
	// generative models emit.
	GenerativeDimensions [][2]int `yaml:"generative_dimensions"`

	// GenerativeSides lists per-axis sizes typical of generative output.
	GenerativeSides []int `yaml:"generative_sides"`
}

func defaultParams() Params {
	return Params{
		ELAQuality:     90,
		MaxFaces:       3,
		FrequencyRings: 10,
		GenerativeDimensions: [][2]int{
			{512, 512}, {768, 768}, {1024, 1024}, {1536, 1536}, {2048, 2048},
			{512, 768}, {768, 512}, {1024, 1536}, {1536, 1024},
			{1024, 1792}, {1792, 1024}, {896, 1152}, {1152, 896},
		},
		GenerativeSides: []int{512, 768, 1024, 1536, 2048},
	}
}

var (
	paramsOnce sync.Once
	params     Params
)

// GetParams returns the shared tunables, loading overrides on first use.
func GetParams() Params {
	paramsOnce.Do(func() {
		params = loadParams(os.Getenv("VERITY_PARAMS_PATH"))
	})
	return params
}

func loadParams(path string) Params {
	p := defaultParams()
	if path == "" {
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[WARN] Could not read params file %s: %v. Using defaults.", path, err)
		return p
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		log.Printf("[WARN] Could not parse params file %s: %v. Using defaults.", path, err)
		return defaultParams()
	}
	if p.ELAQuality <= 0 || p.ELAQuality > 100 {
		p.ELAQuality = 90
	}
	if p.FrequencyRings < 4 {
		p.FrequencyRings = 10
	}
	if p.MaxFaces < 1 {
		p.MaxFaces = 3
	}
	return p
}

// IsGenerativeDimensions reports whether the exact width x height pair
// matches a known generative output size.
func (p Params) IsGenerativeDimensions(w, h int) bool {
	for _, d := range p.GenerativeDimensions {
		if d[0] == w && d[1] == h {
			return true
		}
	}
	return false
}

// HasGenerativeSide reports whether either axis matches a typical
// generative size.
func (p Params) HasGenerativeSide(w, h int) bool {
	for _, s := range p.GenerativeSides {
		if s == w || s == h {
			return true
		}
	}
	return false
}
