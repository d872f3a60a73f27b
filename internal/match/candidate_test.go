package match

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"struct-mapper/internal/analyze"
	"struct-mapper/primitive"
)

type rankSource struct {
	CustomerID   int64
	CustomerName string
	Total        float64
	hidden       string
}

type rankTarget struct {
	CustomerIdentifier int64
	CustomerFullName   string
}

func TestRankCandidates(t *testing.T) {
	model := analyze.NewReflectModel()
	checker := &Checker{Model: model, Converter: primitive.NewConverter()}

	source := model.TypeOf(reflect.TypeFor[rankSource]())
	target := model.TypeOf(reflect.TypeFor[rankTarget]())

	candidates := RankCandidates(target.Member("CustomerFullName"), source.Members, checker)
	require.Len(t, candidates, 3, "unexported members are not candidates")

	best := candidates.Best()
	require.NotNil(t, best)
	assert.Equal(t, "CustomerName", best.Source.Name)
	assert.Equal(t, TypeIdentical, best.TypeCompat.Compatibility)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}

	candidates = RankCandidates(target.Member("CustomerIdentifier"), source.Members, checker)
	assert.Equal(t, "CustomerID", candidates.Best().Source.Name)
}

func TestCombinedScore(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		compat   TypeCompatibility
		expected float64
	}{
		{"perfect", 1.0, TypeIdentical, 1.0},
		{"name only", 1.0, TypeIncompatible, 0.6},
		{"type only", 0.0, TypeIdentical, 0.4},
		{"convertible", 0.5, TypeConvertible, 0.58},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, combinedScore(tt.score, tt.compat), 1e-9)
		})
	}
}

func TestCandidateList(t *testing.T) {
	a := &analyze.MemberInfo{Name: "A"}
	b := &analyze.MemberInfo{Name: "B"}
	c := &analyze.MemberInfo{Name: "C"}

	list := CandidateList{
		{Source: a, Score: 0.9},
		{Source: b, Score: 0.85},
		{Source: c, Score: 0.3},
	}

	assert.Equal(t, []string{"A", "B"}, list.AboveThreshold(DefaultSuggestionScore).Names())
	assert.Equal(t, []string{"A"}, list.Top(1).Names())
	assert.Len(t, list.Top(10), 3)
	assert.Nil(t, CandidateList{}.Best())
}
