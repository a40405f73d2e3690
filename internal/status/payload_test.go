package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload(`{"commit_sha":"abc","wait_minutes":15,"flag":true}`)
	require.NoError(t, err)
	assert.Equal(t, "abc", p.String(KeyCommitSHA, "unknown"))
	assert.Equal(t, 15, p.Int(KeyWaitMinutes))
	assert.Equal(t, "true", p.String("flag", ""))

	for _, raw := range []string{"", "  ", "null"} {
		p, err := ParsePayload(raw)
		require.NoError(t, err, raw)
		assert.Empty(t, p)
	}

	for _, raw := range []string{"[1,2]", `"text"`, "{broken"} {
		_, err := ParsePayload(raw)
		assert.Error(t, err, raw)
	}
}

func TestPayload_StringFallbacks(t *testing.T) {
	p := Payload{"blank": "  ", "null": nil, "num": 12.5, "list": []any{"a"}}

	assert.Equal(t, "unknown", p.String("missing", "unknown"))
	assert.Equal(t, "unknown", p.String("blank", "unknown"))
	assert.Equal(t, "unknown", p.String("null", "unknown"))
	assert.Equal(t, "12.5", p.String("num", ""))
	assert.Equal(t, `["a"]`, p.String("list", ""))
}

func TestPayload_Int(t *testing.T) {
	p := Payload{"f": 3.9, "s": " 7 ", "neg": -4.0, "text": "soon", "b": true}

	assert.Equal(t, 3, p.Int("f"))
	assert.Equal(t, 7, p.Int("s"))
	assert.Equal(t, 0, p.Int("neg"))
	assert.Equal(t, 0, p.Int("text"))
	assert.Equal(t, 0, p.Int("b"))
	assert.Equal(t, 0, p.Int("missing"))
}
