package domain

import (
	"errors"
	"fmt"
	"math"
)

// MatchMode is the linkage algorithm applied to an overlay.
type MatchMode uint8

const (
	// ModePoint matches each base row to the nearest overlay sample in
	// (longitude, latitude, scaled days) space.
	ModePoint MatchMode = iota
	// ModeAnnual matches by location only and broadcasts across dates.
	ModeAnnual
)

func (m MatchMode) String() string {
	if m == ModeAnnual {
		return "annual"
	}
	return "point"
}

// ParameterConfig is the immutable linkage configuration of one overlay column.
type ParameterConfig struct {
	SpatialTolerance  float64 // degrees
	TemporalTolerance int     // days
	Annual            bool
	Categorical       bool
}

// Mode returns the matching algorithm this config selects.
func (c ParameterConfig) Mode() MatchMode {
	if c.Annual {
		return ModeAnnual
	}
	return ModePoint
}

// Aggregation returns the aggregation rule for the overlay's values.
func (c ParameterConfig) Aggregation() AggregationKind {
	return AggregationFor(c.Categorical)
}

func (c ParameterConfig) validate() error {
	if !(c.SpatialTolerance > 0) || math.IsInf(c.SpatialTolerance, 0) {
		return fmt.Errorf("spatial tolerance must be a positive number of degrees, got %v", c.SpatialTolerance)
	}
	if c.TemporalTolerance < 0 {
		return fmt.Errorf("temporal tolerance must be >= 0 days, got %d", c.TemporalTolerance)
	}
	return nil
}

// DatasetSpec describes where a dataset lives and how its raw values are cleaned.
type DatasetSpec struct {
	Name        string
	File        string
	Column      string
	HasHeader   bool
	Range       *ValidRange
	FillValues  []float64
	Categorical bool
}

// Sanitizer returns the value filter declared for the dataset.
func (d DatasetSpec) Sanitizer() Sanitizer {
	return Sanitizer{Range: d.Range, FillValues: d.FillValues}
}

// Aggregation returns the aggregation rule for the dataset's values.
func (d DatasetSpec) Aggregation() AggregationKind {
	return AggregationFor(d.Categorical)
}

func (d DatasetSpec) validate() error {
	if d.Name == "" {
		return errors.New("dataset name is required")
	}
	if d.File == "" {
		return fmt.Errorf("dataset %s: file is required", d.Name)
	}
	if d.Column == "" {
		return fmt.Errorf("dataset %s: column is required", d.Name)
	}
	if d.Range != nil && d.Range.Min > d.Range.Max {
		return fmt.Errorf("dataset %s: valid range min %v > max %v", d.Name, d.Range.Min, d.Range.Max)
	}
	return nil
}

// Overlay is a dataset joined onto the base together with its frozen ParameterConfig.
type Overlay struct {
	Dataset DatasetSpec
	Params  ParameterConfig
}

// NewOverlay registers a dataset as an overlay. The categorical flag of the
// parameter config is taken from the dataset.
func NewOverlay(ds DatasetSpec, spatialTolerance float64, temporalTolerance int, annual bool) Overlay {
	return Overlay{
		Dataset: ds,
		Params: ParameterConfig{
			SpatialTolerance:  spatialTolerance,
			TemporalTolerance: temporalTolerance,
			Annual:            annual,
			Categorical:       ds.Categorical,
		},
	}
}

// Registry is the base dataset plus the overlays joined onto it, in order.
type Registry struct {
	Base     DatasetSpec
	Overlays []Overlay
}

// OverlayColumns returns the overlay value columns in join order.
func (r Registry) OverlayColumns() []string {
	cols := make([]string, len(r.Overlays))
	for i, o := range r.Overlays {
		cols[i] = o.Dataset.Column
	}
	return cols
}

// Validate checks the registry for missing fields, duplicate columns and
// unusable tolerances.
func (r Registry) Validate() error {
	if err := r.Base.validate(); err != nil {
		return fmt.Errorf("%w: base: %w", ErrInvalidConfig, err)
	}
	if len(r.Overlays) == 0 {
		return fmt.Errorf("%w: at least one overlay is required", ErrInvalidConfig)
	}

	seen := map[string]bool{r.Base.Column: true}
	for _, o := range r.Overlays {
		if err := o.Dataset.validate(); err != nil {
			return fmt.Errorf("%w: overlay: %w", ErrInvalidConfig, err)
		}
		if err := o.Params.validate(); err != nil {
			return fmt.Errorf("%w: overlay %s: %w", ErrInvalidConfig, o.Dataset.Name, err)
		}
		if o.Params.Categorical != o.Dataset.Categorical {
			return fmt.Errorf("%w: overlay %s: categorical flag differs between dataset and params", ErrInvalidConfig, o.Dataset.Name)
		}
		if seen[o.Dataset.Column] {
			return fmt.Errorf("%w: duplicate column %s", ErrInvalidConfig, o.Dataset.Column)
		}
		seen[o.Dataset.Column] = true
	}
	return nil
}

// DefaultRegistry returns the land surface temperature base with the NDVI,
// NPP, land cover and tree cover overlays.
func DefaultRegistry() Registry {
	lst := DatasetSpec{
		Name: "LST", File: "all_LST_data.csv", Column: "LST_Celsius", HasHeader: true,
		Range: &ValidRange{Min: -50, Max: 60},
	}
	ndvi := DatasetSpec{
		Name: "NDVI", File: "all_NDVI_data.csv", Column: "NDVI_Value", HasHeader: true,
		Range:      &ValidRange{Min: -1, Max: 1},
		FillValues: []float64{6.5535, 65535, -9999},
	}
	npp := DatasetSpec{
		Name: "NPP", File: "all_NPP_data.csv", Column: "NPP_kgCm2perYear", HasHeader: true,
		Range:      &ValidRange{Min: 0, Max: 10},
		FillValues: []float64{3.2767, -9999, 65535},
	}
	landCover := DatasetSpec{
		Name: "LandCover", File: "all_LandCover_data.csv", Column: "LandCover_Type", HasHeader: true,
		Categorical: true,
	}
	treeCover := DatasetSpec{
		Name: "TreeCover", File: "all_TreeCover_data.csv", Column: "TreeCover_Percent", HasHeader: true,
		Range:      &ValidRange{Min: 0, Max: 100},
		FillValues: []float64{-999, -9999},
	}

	return Registry{
		Base: lst,
		Overlays: []Overlay{
			NewOverlay(ndvi, 0.02, 8, false),
			NewOverlay(npp, 0.02, 365, true),
			NewOverlay(landCover, 0.02, 365, true),
			NewOverlay(treeCover, 0.05, 365, true),
		},
	}
}
