package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_AddAndErr(t *testing.T) {
	var d Diagnostics

	require.True(t, d.IsValid())
	require.NoError(t, d.Err())

	d.AddWarning("redundant_separator", "key_separator repeats the default", "store.Order->warehouse.Order", "")
	d.AddInfo("note", "just saying", "", "")
	assert.True(t, d.IsValid())

	d.AddError("invalid_target_path", `member "Refrence" not found`, "store.Order->warehouse.Order", "Refrence", "Reference")
	d.AddError("type_not_found", `type "x.Y" not found`, "", "x.Y")

	assert.True(t, d.HasErrors())
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Infos, 1)

	err := d.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean Reference?")
	assert.Contains(t, err.Error(), "x.Y")

	var diag Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, "invalid_target_path", diag.Code)
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected string
	}{
		{
			name:     "message only",
			diag:     Diagnostic{Message: "plain"},
			expected: "plain",
		},
		{
			name:     "full",
			diag:     Diagnostic{Code: "c", Message: "m", TypePair: "a->b", FieldPath: "X", Suggestions: []string{"Y", "Z"}},
			expected: "[a->b] X: [c] m (did you mean Y, Z?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.diag.String())
		})
	}
}

func TestDiagnostics_SortAndMerge(t *testing.T) {
	var a, b Diagnostics

	a.AddError("z", "m", "b->c", "")
	b.AddError("a", "m", "a->b", "Y")
	b.AddError("a", "m", "a->b", "X")

	a.Merge(b)
	a.Sort()

	require.Len(t, a.Errors, 3)
	assert.Equal(t, "X", a.Errors[0].FieldPath)
	assert.Equal(t, "Y", a.Errors[1].FieldPath)
	assert.Equal(t, "b->c", a.Errors[2].TypePair)
	assert.Equal(t, "error", a.Errors[0].Severity.String())
}
