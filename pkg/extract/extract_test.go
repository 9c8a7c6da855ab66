package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDirectJSON(t *testing.T) {
	rec, err := Record(`{"done": true, "count": 3}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"done": true, "count": 3.0}, rec)
}

func TestRecordFencedBlock(t *testing.T) {
	raw := "Sure! Here is the result:\n```json\n{\"done\": false}\n```\nLet me know."
	rec, err := Record(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"done": false}, rec)
}

func TestRecordFencedBlockWithoutLanguageTag(t *testing.T) {
	rec, err := Record("```\n{\"x\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1.0}, rec)
}

func TestRecordBracesInsideProse(t *testing.T) {
	raw := `The model says {"summary": "ok", "score": 0.9} which looks right.`
	rec, err := Record(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", rec["summary"])
}

func TestRecordMultipleFencesFallsBackToBraces(t *testing.T) {
	raw := "```\nnot json\n```\nbut also {\"ok\": true}\n```\nmore noise\n```"
	// Two blocks means strategy 2 does not apply; the outermost-brace scan
	// still finds the object.
	rec, err := Record(raw)
	require.NoError(t, err)
	assert.Equal(t, true, rec["ok"])
}

func TestRecordFailureCarriesRawText(t *testing.T) {
	raw := "I could not produce any structure, sorry."
	_, err := Record(raw)
	require.Error(t, err)

	var xerr *Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, raw, xerr.Raw)
}

func TestRecordDecodesNestedStructures(t *testing.T) {
	rec, err := Record(`{"meta": {"depth": 2, "tags": ["a", "b"]}, "score": 0, "note": null}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"meta":  map[string]any{"depth": 2.0, "tags": []any{"a", "b"}},
		"score": 0.0,
		"note":  nil,
	}, rec)
}

func TestRecordRejectsTruncatedObject(t *testing.T) {
	_, err := Record(`{"done": true`)
	require.Error(t, err)
}

func TestRecordRejectsNonObjectJSON(t *testing.T) {
	_, err := Record(`["just", "an", "array"]`)
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	original := map[string]any{
		"done":   true,
		"count":  4.0,
		"nested": map[string]any{"k": "v"},
		"list":   []any{1.0, 2.0},
	}

	text, err := ToText(original)
	require.NoError(t, err)

	back, err := Record(text)
	require.NoError(t, err)
	assert.Equal(t, original, back)
}
