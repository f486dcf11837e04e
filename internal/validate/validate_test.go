package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	source := map[string]int64{
		"dbo.FactSales":   1000,
		"dbo.DimCustomer": 250,
		"dbo.DimProduct":  80,
	}
	target := map[string]int64{
		"dbo.FactSales":   1000,
		"dbo.DimCustomer": 240,
		"stage.Scratch":   5,
	}

	report := Compare(source, target)

	assert.Equal(t, 1, report.Matches)
	assert.Equal(t, 1, report.Mismatches)
	assert.Equal(t, 1, report.Missing)
	assert.Equal(t, 1, report.Extra)
	assert.False(t, report.OK())

	byName := map[string]TableComparison{}
	for _, c := range report.Tables {
		byName[c.Table] = c
	}

	assert.Equal(t, StatusMatch, byName["dbo.FactSales"].Status)

	mismatch := byName["dbo.DimCustomer"]
	assert.Equal(t, StatusMismatch, mismatch.Status)
	assert.Equal(t, int64(10), mismatch.Difference)
	assert.InDelta(t, 4.0, mismatch.PctDiff, 0.001)

	assert.Equal(t, StatusMissing, byName["dbo.DimProduct"].Status)
	assert.Equal(t, StatusOnlyInTarget, byName["stage.Scratch"].Status)
}

func TestCompareAllMatchingOK(t *testing.T) {
	counts := map[string]int64{"dbo.A": 1, "dbo.B": 2}
	report := Compare(counts, counts)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Matches)
}

func TestCompareExtraTablesDoNotFailValidation(t *testing.T) {
	source := map[string]int64{"dbo.A": 1}
	target := map[string]int64{"dbo.A": 1, "dbo.B": 9}
	report := Compare(source, target)
	assert.True(t, report.OK())
	assert.Equal(t, 1, report.Extra)
}

func TestCompareZeroSourceRows(t *testing.T) {
	report := Compare(map[string]int64{"dbo.Empty": 0}, map[string]int64{"dbo.Empty": 3})
	require.Equal(t, 1, report.Mismatches)
	assert.Equal(t, float64(0), report.Tables[0].PctDiff)
}

func TestWriteReport(t *testing.T) {
	report := Compare(
		map[string]int64{"dbo.A": 100, "dbo.B": 10},
		map[string]int64{"dbo.A": 90},
	)
	report.Source = "synapse/db"
	report.Target = "workspace/wh"

	var buf strings.Builder
	require.NoError(t, WriteReport(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "MIGRATION VALIDATION REPORT")
	assert.Contains(t, out, "Source: synapse/db")
	assert.Contains(t, out, "dbo.A: source=100 target=90 (diff: 10, 10.00%)")
	assert.Contains(t, out, "dbo.B (10 rows in source)")
}

func TestCountQueriesExcludeSystemSchemas(t *testing.T) {
	assert.Contains(t, sourceCountsQuery, "'sys', 'INFORMATION_SCHEMA', 'migration'")
	assert.Contains(t, targetCountsQuery, "p.index_id IN (0, 1)")
}

func TestWithSourceDriver(t *testing.T) {
	v := NewValidator(nil, nil, nil)
	assert.Equal(t, sourceCountsQuery, v.sourceQuery)

	pg := NewValidator(nil, nil, nil, WithSourceDriver("postgres"))
	assert.Equal(t, sourceCountsQueryPostgres, pg.sourceQuery)

	unknown := NewValidator(nil, nil, nil, WithSourceDriver("oracle"))
	assert.Equal(t, sourceCountsQuery, unknown.sourceQuery)
}
