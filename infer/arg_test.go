package infer

import (
	"testing"

	"github.com/shivasurya/apimisuse/feature"
	"github.com/stretchr/testify/assert"
)

// Scenario 2 of the detection test suite: 8/10 traces check arg 0.
func TestArgPreSpecMajorityCheck(t *testing.T) {
	analyzer := NewArgPreAnalyzer()
	checked := feature.Record{ArgPre: &feature.ArgPre{
		ArgNum:  1,
		Feature: []feature.ArgPreItem{{Check: feature.ArgCheck{Checked: true}}},
	}}
	unchecked := feature.Record{ArgPre: &feature.ArgPre{
		ArgNum:  1,
		Feature: []feature.ArgPreItem{{Check: feature.ArgCheck{Checked: false}}},
	}}
	for i := 0; i < 8; i++ {
		analyzer.Update(checked, 1)
	}
	for i := 0; i < 2; i++ {
		analyzer.Update(unchecked, 1)
	}
	spec := analyzer.Specification(10, 0.5, false)
	assert.True(t, spec.Args[0].NeedCheck)
	assert.InDelta(t, 0.8, spec.Args[0].Score, 1e-9)
}

func TestArgPreAnalyzerIgnoresVariadicMismatch(t *testing.T) {
	analyzer := NewArgPreAnalyzer()
	analyzer.Update(feature.Record{ArgPre: &feature.ArgPre{
		ArgNum:  2,
		Feature: []feature.ArgPreItem{{Check: feature.ArgCheck{Checked: true}}, {Check: feature.ArgCheck{Checked: true}}},
	}}, 5)
	// A later record with a different arg_num must be ignored, not crash.
	analyzer.Update(feature.Record{ArgPre: &feature.ArgPre{
		ArgNum:  3,
		Feature: []feature.ArgPreItem{{}, {}, {}},
	}}, 5)
	assert.Equal(t, 2, analyzer.ArgNum)
	assert.Equal(t, []int{5, 5}, analyzer.ArgsCheckedCount)
}

func TestArgPostAnalyzerSkipsConstantArgs(t *testing.T) {
	analyzer := NewArgPostAnalyzer()
	rec := feature.Record{
		ArgPre: &feature.ArgPre{ArgNum: 1, Feature: []feature.ArgPreItem{{IsConstant: true}}},
		ArgPost: &feature.ArgPost{ArgNum: 1, Feature: []feature.ArgPostItem{
			{UsedInCheck: true},
		}},
	}
	analyzer.Update(rec, 10)
	assert.Equal(t, []int{0}, analyzer.ArgsCheckedCount)
}

func TestDisableCodeZeroesArgSpecs(t *testing.T) {
	analyzer := NewArgPreAnalyzer()
	analyzer.Update(feature.Record{ArgPre: &feature.ArgPre{
		ArgNum: 1, Feature: []feature.ArgPreItem{{Check: feature.ArgCheck{Checked: true}}},
	}}, 1)
	spec := analyzer.Specification(1, 0.5, true)
	assert.False(t, spec.Args[0].NeedCheck)
}
