package match

import (
	"cmp"
	"slices"

	"struct-mapper/internal/analyze"
)

// Suggestion thresholds for unmapped members.
const (
	DefaultSuggestionScore = 0.5
	DefaultSuggestionCount = 3
)

const (
	nameWeight = 0.6
	typeWeight = 0.4
)

// Candidate is a source member scored against a target member.
type Candidate struct {
	Source *analyze.MemberInfo
	Target *analyze.MemberInfo

	NameScore  float64
	TypeCompat TypeCompatibilityResult
	Score      float64
}

// CandidateList is ordered best first.
type CandidateList []Candidate

// RankCandidates scores every readable source member against target. Ties keep the
// source members in name order.
func RankCandidates(target *analyze.MemberInfo, sources []*analyze.MemberInfo, checker *Checker) CandidateList {
	var list CandidateList

	for _, source := range sources {
		if !source.IsReadable {
			continue
		}

		c := Candidate{
			Source:     source,
			Target:     target,
			NameScore:  NameSimilarity(source.Name, target.Name),
			TypeCompat: checker.Score(source.Type, target.Type),
		}
		c.Score = combinedScore(c.NameScore, c.TypeCompat.Compatibility)

		list = append(list, c)
	}

	slices.SortFunc(list, func(a, b Candidate) int {
		if byScore := cmp.Compare(b.Score, a.Score); byScore != 0 {
			return byScore
		}

		return cmp.Compare(a.Source.Name, b.Source.Name)
	})

	return list
}

func combinedScore(nameScore float64, compat TypeCompatibility) float64 {
	return nameScore*nameWeight + compat.Weight()*typeWeight
}

// Top returns at most n candidates.
func (c CandidateList) Top(n int) CandidateList {
	return c[:min(n, len(c))]
}

// Best returns the first candidate, or nil.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var out CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// Names returns the source member names in rank order.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Source.Name
	}

	return names
}
