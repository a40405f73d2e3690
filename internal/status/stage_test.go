package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		raw  string
		want Stage
	}{
		{"started", StageStarted},
		{"  Success ", StageSuccess},
		{"PAGES-BUILT", StagePagesBuilt},
		{"rate-limit-waiting", StageRateLimitWaiting},
	}
	for _, tt := range tests {
		got, err := ParseStage(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseStage_Invalid(t *testing.T) {
	for _, raw := range []string{"", "launching", "start", "success!"} {
		_, err := ParseStage(raw)
		require.Error(t, err, raw)
		assert.True(t, IsInvalidStage(err))

		var invalid *InvalidStageError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, raw, invalid.Value)
		assert.Contains(t, invalid.Allowed, "started")
		assert.Contains(t, err.Error(), "rate-limit-complete")
	}
}

func TestStages_EveryStageHasDefinition(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, 11)
	for _, s := range stages {
		def, ok := stageDefs[s]
		require.True(t, ok, s)
		assert.NotEmpty(t, def.title, s)
		assert.NotEmpty(t, def.glyph, s)
		assert.NotNil(t, def.next, s)
		assert.NotNil(t, def.entry, s)
		assert.Contains(t, []string{GlyphInProgress, GlyphCompleted, GlyphFailed}, def.entryGlyph, s)
	}

	stages[0] = "mutated"
	assert.Equal(t, StageStarted, Stages()[0])
}
