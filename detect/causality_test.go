package detect

import (
	"testing"

	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/infer"
	"github.com/stretchr/testify/assert"
)

// Scenario 4 of the detection test suite: an allocator-style target whose
// spec requires a "close_x" post-call, missing on this trace.
func TestCheckCausalityFlagsMissingPostCall(t *testing.T) {
	spec := infer.CausalitySpec{PostFunctions: []infer.CausalPostEntry{{Name: "close_x", Score: 0.9}}}
	rec := feature.Record{
		Retval:    &feature.Retval{Check: feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq}},
		Causality: &feature.Causality{PostCall: map[string]feature.CausalNeighbor{}},
	}

	isBug, text := CheckCausality("open_x", rec, spec, docfeature.Feature{})
	assert.True(t, isBug)
	assert.Contains(t, text, "close_x")
}

func TestCheckCausalityCleanWhenPostCallPresent(t *testing.T) {
	spec := infer.CausalitySpec{PostFunctions: []infer.CausalPostEntry{{Name: "close_x", Score: 0.9}}}
	rec := feature.Record{
		Retval:    &feature.Retval{Check: feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq}},
		Causality: &feature.Causality{PostCall: map[string]feature.CausalNeighbor{"close_x": {}}},
	}

	isBug, _ := CheckCausality("open_x", rec, spec, docfeature.Feature{})
	assert.False(t, isBug)
}

// Scenario 5: a deallocator-style target called twice in the same trace's
// post.call with no matching pre.call entry should flag a potential
// double-free.
func TestCheckCausalityFlagsDuplicatedPostCall(t *testing.T) {
	rec := feature.Record{
		Causality: &feature.Causality{
			PostCall: map[string]feature.CausalNeighbor{"thing_free": {}},
			PreCall:  map[string]feature.CausalNeighbor{},
		},
	}

	isBug, text := CheckCausality("thing_free", rec, infer.CausalitySpec{}, docfeature.Feature{})
	assert.True(t, isBug)
	assert.Contains(t, text, "duplicated call")
}

// Family-prefix suppression (§4.4) only applies to the pre direction and
// only when a trace's *observed* neighbor itself matches the prefix, so an
// allocator target with an empty observed post.call still gets flagged for
// a missing post-direction neighbor, even within the same naming family.
func TestCheckCausalityFlagsMissingPostCallWithinSameFamily(t *testing.T) {
	spec := infer.CausalitySpec{PostFunctions: []infer.CausalPostEntry{{Name: "SSL_free", Score: 0.9}}}
	rec := feature.Record{
		Retval:    &feature.Retval{Check: feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq}},
		Causality: &feature.Causality{PostCall: map[string]feature.CausalNeighbor{}},
	}

	isBug, text := CheckCausality("SSL_new", rec, spec, docfeature.Feature{})
	assert.True(t, isBug)
	assert.Contains(t, text, "SSL_free")
}

func TestCheckCausalitySkipsPostDirectionWhenRetvalUnused(t *testing.T) {
	spec := infer.CausalitySpec{PostFunctions: []infer.CausalPostEntry{{Name: "close_x", Score: 0.9}}}
	rec := feature.Record{
		Causality: &feature.Causality{PostCall: map[string]feature.CausalNeighbor{}},
	}

	isBug, _ := CheckCausality("open_x", rec, spec, docfeature.Feature{})
	assert.False(t, isBug)
}
