package infer

import (
	"testing"

	"github.com/shivasurya/apimisuse/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1 of the detection test suite: a checked-majority allocator
// with one unchecked, dereferenced miss.
func TestRetvalSpecMissingNullCheckScenario(t *testing.T) {
	fm := feature.NewFrequencyMap()
	checked := feature.Record{Retval: &feature.Retval{
		Check: feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq, ComparedWithConst: 0},
	}}
	for i := 0; i < 9; i++ {
		fm.Add(checked, "ok.c:1", false)
	}
	missed := feature.Record{Retval: &feature.Retval{
		Ctx: feature.RetvalCtx{DerefedRead: true},
	}}
	fm.Add(missed, "a.c:42", false)

	spec := Analyze(fm, "foo_new", nil, nil, false)
	require.Equal(t, 10, spec.TracesNum)
	assert.True(t, spec.Retval.NeedToCheck)
	assert.Contains(t, spec.Retval.ValidChkvals, ChkValKey("0"))
}

func TestChkValKeyOffsetCanonicalization(t *testing.T) {
	gt := feature.RetvalCheck{Checked: true, CheckCond: feature.CondGt, ComparedWithConst: 4}
	ge := feature.RetvalCheck{Checked: true, CheckCond: feature.CondGe, ComparedWithConst: 5}
	assert.Equal(t, ChkValKeyForChecked(gt), ChkValKeyForChecked(feature.RetvalCheck{
		Checked: true, CheckCond: feature.CondLe, ComparedWithConst: 4,
	}))
	le := feature.RetvalCheck{Checked: true, CheckCond: feature.CondLe, ComparedWithConst: 4}
	lt := feature.RetvalCheck{Checked: true, CheckCond: feature.CondLt, ComparedWithConst: 6}
	assert.Equal(t, ChkValKeyForChecked(gt), ChkValKeyForChecked(le))
	_ = ge
	_ = lt
}

func TestChkValKeyPlainEqNe(t *testing.T) {
	eq := feature.RetvalCheck{Checked: true, CheckCond: feature.CondEq, ComparedWithConst: 3}
	assert.Equal(t, ChkValKey("3"), ChkValKeyForChecked(eq))
}

func TestDisableCodeZeroesRetvalSpec(t *testing.T) {
	fm := feature.NewFrequencyMap()
	fm.Add(feature.Record{Retval: &feature.Retval{Check: feature.RetvalCheck{Checked: true}}}, "a.c:1", false)
	spec := Analyze(fm, "foo", nil, nil, true)
	assert.False(t, spec.Retval.NeedToCheck)
	assert.Empty(t, spec.Retval.ValidChkvals)
}
