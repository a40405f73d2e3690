package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutCount(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want int
	}{
		{"found", Component{Issues: []string{"Found 12 layout components"}}, 12},
		{"first run of digits", Component{Issues: []string{"layer 3: Found 12 layout components"}}, 3},
		{"only first issue counts", Component{Issues: []string{"nested layouts", "Found 9"}}, 0},
		{"no digits", Component{Issues: []string{"Missing PageLayout"}}, 0},
		{"empty issues", Component{Issues: []string{}}, 0},
		{"missing issues", Component{Name: "Bare"}, 0},
		{"overflow", Component{Issues: []string{"99999999999999999999999 layouts"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LayoutCount(tt.c))
		})
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Excellent", StatusLabel(90))
	assert.Equal(t, "Good", StatusLabel(89.9))
	assert.Equal(t, "Good", StatusLabel(70))
	assert.Equal(t, "Needs Improvement", StatusLabel(50))
	assert.Equal(t, "Action Required", StatusLabel(49))
	assert.Equal(t, "Action Required", StatusLabel(0))
}

func TestParseReport(t *testing.T) {
	r, err := ParseReport([]byte(`{
		"summary": {"total": 10, "compliant": 7, "partiallyCompliant": 2, "nonCompliant": 1, "overallCompliance": 75.5},
		"results": {"partiallyCompliant": [{"name": "Home", "issues": ["Found 3 layout components"]}], "nonCompliant": []}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 10, r.Summary.Total)
	assert.InDelta(t, 75.5, r.Summary.OverallCompliance, 0.001)
	require.Len(t, r.Results.PartiallyCompliant, 1)
	assert.Equal(t, "Home", r.Results.PartiallyCompliant[0].Name)

	r, err = ParseReport([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Report{}, r)

	_, err = ParseReport([]byte("{"))
	assert.Error(t, err)
}
