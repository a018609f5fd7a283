package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameString(t *testing.T) {
	tt := []struct {
		name string
		n    Name
		exp  string
	}{
		{name: "no metadata", n: NewName("diameter_xbar", nil), exp: "diameter_xbar"},
		{name: "metadata sorted", n: NewName("diameter_xbar", map[string]string{"machine": "m12", "line": "4"}), exp: "diameter_xbar[line=4 machine=m12]"},
		{name: "annotations", n: NewName("diameter_xbar", map[string]string{"line": "4", "xbar": ""}), exp: "diameter_xbar[line=4 @xbar]"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, tc.n.String())
		})
	}
}

func TestNewNameFrom(t *testing.T) {
	orig := NewName("diameter_xbar", map[string]string{"line": "4"})
	derived := NewNameFrom(orig)
	derived.AddMetadata(map[string]string{"rule": "beyond-sigma"})
	assert.Equal(t, "diameter_xbar[line=4 rule=beyond-sigma]", derived.String())
	// original metadata is untouched
	assert.Equal(t, "diameter_xbar[line=4]", orig.String())
}

func TestAddAnnotation(t *testing.T) {
	n := NewName("defects_count", map[string]string{})
	n.AddAnnotation("pchart")
	assert.Equal(t, "defects_count[@pchart]", n.String())
}
