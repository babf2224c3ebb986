package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "empty", in: "", wantErr: ErrEmptyDecimal},
		{name: "scientific lower", in: "1e10", wantErr: ErrScientificNotation},
		{name: "scientific upper", in: "1E10", wantErr: ErrScientificNotation},
		{name: "plain integer", in: "42"},
		{name: "plain decimal", in: "42.500000001"},
		{name: "negative", in: "-1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseDecimal(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.in, d.String())
		})
	}
}

func TestParsePositiveDecimal(t *testing.T) {
	_, err := ParsePositiveDecimal("0")
	assert.ErrorIs(t, err, ErrNonPositiveDecimal)

	_, err = ParsePositiveDecimal("-1")
	assert.ErrorIs(t, err, ErrNonPositiveDecimal)

	d, err := ParsePositiveDecimal("3.14")
	assert.NoError(t, err)
	assert.Equal(t, "3.14", d.String())
}

func TestMin(t *testing.T) {
	a, _ := ParseDecimal("1.5")
	b, _ := ParseDecimal("1.2")

	assert.Equal(t, "1.2", Min(a, b).String())
	assert.Equal(t, "1.2", Min(b, a).String())
	assert.Equal(t, "1.5", Min(a, a).String())
}
