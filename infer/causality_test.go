package infer

import (
	"testing"

	"github.com/shivasurya/apimisuse/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChkValCondDistinguishesDefaultFromNoCheck(t *testing.T) {
	noRetval := feature.Record{}
	uncheckedRetval := feature.Record{Retval: &feature.Retval{}}
	assert.Equal(t, ChkCondDefault, ChkValCond(noRetval))
	assert.Equal(t, ChkCondNoCheck, ChkValCond(uncheckedRetval))
	assert.NotEqual(t, ChkValCond(noRetval), ChkValCond(uncheckedRetval))
}

// Scenario 4 of the detection test suite: a majority post-call requirement
// (open_x -> close_x) missing at one location. At T=10 the causal-enhance
// bonus does not apply (it is gated on T>=50 per §4.4) but the raw 9/10
// frequency already clears the low-T threshold on its own.
func TestCausalitySpecMissingFreeScenario(t *testing.T) {
	analyzer := NewCausalAnalyzer()
	withClose := feature.Record{
		Retval: &feature.Retval{Check: feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq}},
		Causality: &feature.Causality{
			PostCall: map[string]feature.CausalNeighbor{"close_x": {}},
		},
	}
	for i := 0; i < 9; i++ {
		analyzer.Update(withClose, 1)
	}
	missingClose := feature.Record{
		Retval:    &feature.Retval{Check: feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq}},
		Causality: &feature.Causality{PostCall: map[string]feature.CausalNeighbor{}},
	}
	analyzer.Update(missingClose, 1)

	threshold := Threshold(10, nil, nil)
	spec := analyzer.Specification("open_x", 10, threshold, false)

	entry, ok := spec.Post("close_x")
	require.True(t, ok, "close_x should be inferred as a required post-call neighbor")
	assert.InDelta(t, 0.9, entry.Score, 1e-9)
}

func TestFilterPreStopsBelowPointTwoFrequency(t *testing.T) {
	analyzer := NewCausalAnalyzer()
	frequent := feature.Record{Causality: &feature.Causality{PreCall: map[string]feature.CausalNeighbor{"alloc_init": {}}}}
	rareA := feature.Record{Causality: &feature.Causality{PreCall: map[string]feature.CausalNeighbor{"rare_a": {}}}}
	rareB := feature.Record{Causality: &feature.Causality{PreCall: map[string]feature.CausalNeighbor{"rare_b": {}}}}
	for i := 0; i < 8; i++ {
		analyzer.Update(frequent, 1)
	}
	analyzer.Update(rareA, 1) // 1/10 < 0.2: iteration halts after this entry
	analyzer.Update(rareB, 1) // ties rare_a on time, sorts after it by name

	// A 0.05 threshold lets both rare neighbors pass on score alone, so only
	// the early stop keeps rare_b out.
	spec := analyzer.Specification("target_fn", 10, 0.05, false)
	_, hasRareA := spec.Pre("rare_a")
	_, hasRareB := spec.Pre("rare_b")
	assert.True(t, hasRareA)
	assert.False(t, hasRareB)
}

func TestDisableCodeYieldsEmptyCausalitySpec(t *testing.T) {
	analyzer := NewCausalAnalyzer()
	analyzer.Update(feature.Record{Causality: &feature.Causality{
		PreCall: map[string]feature.CausalNeighbor{"x": {}},
	}}, 5)
	spec := analyzer.Specification("f", 5, 0.5, true)
	assert.Empty(t, spec.PreFunctions)
	assert.Empty(t, spec.PostFunctions)
}
