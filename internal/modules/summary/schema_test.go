package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInput(t *testing.T) {
	in, err := DecodeInput([]byte(`{"ehrData":"Patient X, BP 120/80"}`))
	require.NoError(t, err)
	assert.Equal(t, "Patient X, BP 120/80", in.EHRData)

	cases := map[string]struct {
		body   string
		field  string
		reason string
	}{
		"not json":   {`nope`, "body", "must be a JSON object"},
		"array":      {`["x"]`, "body", "must be a JSON object"},
		"missing":    {`{}`, "ehrData", "is required"},
		"null":       {`{"ehrData":null}`, "ehrData", "is required"},
		"number":     {`{"ehrData":42}`, "ehrData", "must be a string"},
		"empty":      {`{"ehrData":""}`, "ehrData", "must not be empty"},
		"whitespace": {`{"ehrData":"  \n\t "}`, "ehrData", "must not be empty"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInput([]byte(tc.body))
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			assert.Equal(t, tc.reason, vErr.Reason)
		})
	}
}

func TestDecodeOutput(t *testing.T) {
	out, err := DecodeOutput(`{"summary":"Patient X is healthy."}`)
	require.NoError(t, err)
	assert.Equal(t, "Patient X is healthy.", out.Summary)

	out, err = DecodeOutput("```json\n{\"summary\":\"Fenced.\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Fenced.", out.Summary)

	out, err = DecodeOutput(`Here you go: {"summary":"  padded  "} thanks`)
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", out.Summary)

	for _, raw := range []string{`{"foo":1}`, `{"summary":3}`, `{"summary":"   "}`, `not json`, ``} {
		_, err := DecodeOutput(raw)
		var sErr *SchemaMismatchError
		require.ErrorAs(t, err, &sErr, raw)
		assert.Equal(t, raw, sErr.Raw)
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", errorKind(nil))
	assert.Equal(t, "validation", errorKind(&ValidationError{}))
	assert.Equal(t, "schema_mismatch", errorKind(&SchemaMismatchError{}))
	assert.Equal(t, "timeout", errorKind(&GenerationError{Kind: KindTimeout}))
	assert.Equal(t, "unknown", errorKind(assert.AnError))
}
