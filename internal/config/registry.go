package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

// registryFile is the on-disk layout of DATASETS_FILE.
type registryFile struct {
	Base     datasetEntry   `yaml:"base"`
	Overlays []overlayEntry `yaml:"overlays"`
}

type datasetEntry struct {
	Name        string             `yaml:"name"`
	File        string             `yaml:"file"`
	Column      string             `yaml:"column"`
	HasHeader   *bool              `yaml:"has_header"`
	ValidRange  *domain.ValidRange `yaml:"valid_range,omitempty"`
	FillValues  []float64          `yaml:"fill_values,omitempty"`
	Categorical bool               `yaml:"categorical,omitempty"`
}

type overlayEntry struct {
	datasetEntry      `yaml:",inline"`
	SpatialTolerance  float64 `yaml:"spatial_tolerance"`
	TemporalTolerance int     `yaml:"temporal_tolerance"`
	Annual            bool    `yaml:"annual"`
}

func (e datasetEntry) toSpec() domain.DatasetSpec {
	hasHeader := true
	if e.HasHeader != nil {
		hasHeader = *e.HasHeader
	}
	return domain.DatasetSpec{
		Name:        e.Name,
		File:        e.File,
		Column:      e.Column,
		HasHeader:   hasHeader,
		Range:       e.ValidRange,
		FillValues:  e.FillValues,
		Categorical: e.Categorical,
	}
}

// LoadRegistry reads the dataset registry from path. An empty path yields
// the built-in registry.
func LoadRegistry(path string) (domain.Registry, error) {
	if path == "" {
		return domain.DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("read datasets file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes and validates a YAML dataset registry.
func ParseRegistry(data []byte) (domain.Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Registry{}, fmt.Errorf("%w: decode datasets file: %w", domain.ErrInvalidConfig, err)
	}

	reg := domain.Registry{Base: f.Base.toSpec()}
	for _, o := range f.Overlays {
		reg.Overlays = append(reg.Overlays,
			domain.NewOverlay(o.toSpec(), o.SpatialTolerance, o.TemporalTolerance, o.Annual))
	}
	if err := reg.Validate(); err != nil {
		return domain.Registry{}, err
	}
	return reg, nil
}

func entryOf(ds domain.DatasetSpec) datasetEntry {
	hasHeader := ds.HasHeader
	return datasetEntry{
		Name:        ds.Name,
		File:        ds.File,
		Column:      ds.Column,
		HasHeader:   &hasHeader,
		ValidRange:  ds.Range,
		FillValues:  ds.FillValues,
		Categorical: ds.Categorical,
	}
}

// MarshalRegistry encodes a registry in the DATASETS_FILE layout.
func MarshalRegistry(reg domain.Registry) ([]byte, error) {
	f := registryFile{Base: entryOf(reg.Base)}
	for _, o := range reg.Overlays {
		f.Overlays = append(f.Overlays, overlayEntry{
			datasetEntry:      entryOf(o.Dataset),
			SpatialTolerance:  o.Params.SpatialTolerance,
			TemporalTolerance: o.Params.TemporalTolerance,
			Annual:            o.Params.Annual,
		})
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode datasets file: %w", err)
	}
	return data, nil
}
