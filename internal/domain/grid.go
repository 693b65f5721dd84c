package domain

import "math"

// GridCell identifies a location bucket by its integer grid indices.
type GridCell struct {
	LonIndex int64
	LatIndex int64
}

// CellIndex returns the grid index of a coordinate: round(x / resolution),
// rounding half to even.
func CellIndex(x, resolution float64) int64 {
	return int64(math.RoundToEven(x / resolution))
}

// RoundToGrid snaps a coordinate to the nearest multiple of resolution.
// RoundToGrid(RoundToGrid(x, r), r) == RoundToGrid(x, r).
func RoundToGrid(x, resolution float64) float64 {
	return float64(CellIndex(x, resolution)) * resolution
}

// CellOf returns the grid cell containing the coordinate pair.
func CellOf(lon, lat, resolution float64) GridCell {
	return GridCell{
		LonIndex: CellIndex(lon, resolution),
		LatIndex: CellIndex(lat, resolution),
	}
}

// Coordinates returns the snapped longitude and latitude of the cell.
func (c GridCell) Coordinates(resolution float64) (lon, lat float64) {
	return float64(c.LonIndex) * resolution, float64(c.LatIndex) * resolution
}

// Decimals returns the number of decimal places that print a grid coordinate
// exactly at the given resolution (2 for 0.01, 0 for 1).
func Decimals(resolution float64) int {
	d := 0
	for d < 12 && math.Abs(resolution-math.Round(resolution)) > 1e-9 {
		resolution *= 10
		d++
	}
	return d
}
