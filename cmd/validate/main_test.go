package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

const validOutput = `date,longitude,latitude,LST_Celsius,NDVI_Value,NPP_kgCm2perYear,LandCover_Type,TreeCover_Percent
2024-01-10,30.00,40.00,20.5,0.4,1.2,Forest,55
2024-01-14,30.00,40.00,21,,1.2,Forest,55
2024-01-10,30.01,40.00,19,0.3,,,
`

func writeOutput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_ValidOutput(t *testing.T) {
	assert.Equal(t, 0, run(writeOutput(t, validOutput), "", domain.DefaultGridResolution))
}

func TestValidatePhases_DetectViolations(t *testing.T) {
	reg := domain.DefaultRegistry()
	bad := validOutput +
		"2023-12-30,30.00,40.00,20,0.1,1.2,Forest,55\n" + // outside year
		"2024-01-10,30.505,41.00,20,0.1,,,\n" + // off grid
		"2024-01-10,30.01,40.00,19,0.3,,,\n" + // duplicate key
		"2024-01-12,30.02,40.00,19,,,,\n" + // no overlay
		"2024-01-12,30.03,40.00,19,6.5535,,,\n" + // fill value
		"2024-01-20,30.00,40.00,22,,1.3,Forest,55\n" // annual value changes

	header, rows, err := loadOutput(writeOutput(t, bad))
	require.NoError(t, err)
	require.True(t, validateSchema(header, reg).passed())

	rowPhase := validateRows(rows, domain.DefaultGridResolution)
	assert.Len(t, rowPhase.errors, 4)
	joined := strings.Join(rowPhase.errors, "\n")
	assert.Contains(t, joined, "outside 2024")
	assert.Contains(t, joined, "not on the")
	assert.Contains(t, joined, "duplicate key")
	assert.Contains(t, joined, "every overlay value is missing")

	values := validateValues(rows, reg)
	require.Len(t, values.errors, 1)
	assert.Contains(t, values.errors[0], "NDVI_Value")

	annual := validateAnnualConsistency(rows, reg, domain.DefaultGridResolution)
	require.Len(t, annual.errors, 1)
	assert.Contains(t, annual.errors[0], "NPP_kgCm2perYear")
}

func TestValidateSchema_Mismatch(t *testing.T) {
	p := validateSchema([]string{"date", "longitude", "latitude", "LST_Celsius"}, domain.DefaultRegistry())
	assert.False(t, p.passed())
}
