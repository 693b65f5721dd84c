// Package domain models gridded geospatial time-series samples and the
// record-linkage rules that join several overlay datasets onto a base dataset.
//
// # Data Sources
//
// Every dataset is a flat table of satellite-derived observations with the
// columns date, longitude, latitude and one value column, e.g. land surface
// temperature (LST_Celsius), vegetation index (NDVI_Value), net primary
// productivity (NPP_kgCm2perYear), land cover class (LandCover_Type) and tree
// cover (TreeCover_Percent). Samples arrive at irregular coordinates and dates.
//
// # Conventions
//
// Coordinates:
//
//	Longitude/latitude in decimal degrees. Curvature is ignored: degrees are
//	the metric space for every distance computed here.
//
// Grid:
//
//	Coordinates snap to a fixed grid, DefaultGridResolution = 0.01° (~1.1 km).
//	grid(x) = roundHalfEven(x / resolution) * resolution. Half-to-even is the
//	same rule numpy applies, so boundary samples land in the same cells as in
//	the historical outputs. Cells are keyed by their integer index, so float
//	artefacts (30.000000000000004) never split a cell.
//
// Time:
//
//	Dates are calendar days in UTC. The linkage is restricted to AnalysisYear
//	(2024). For spatiotemporal matching a date becomes a third coordinate:
//	(days since Epoch) * time scale, DefaultTimeScale = 0.01 degree per day.
//
// Values:
//
//	A Value is a number, a category, or Missing. Missing is a distinct state,
//	never a sentinel number, so "no value" can't be mistaken for data.
//
// Fill values:
//
//	Products encode "no measurement" as reserved numbers (65535, -9999,
//	6.5535 for scaled NDVI, 3.2767 for scaled NPP). These and out-of-range
//	values are converted to Missing before aggregation. Values are never clamped.
//
// Aggregation:
//
//	Duplicate (date, cell) observations collapse into one sample: arithmetic
//	mean for continuous values, mode for categorical values (ties go to the
//	value seen first). Groups whose every value is Missing are dropped.
package domain
