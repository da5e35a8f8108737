package astro_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palfa/commondb/pkg/astro"
)

func TestParseRA(t *testing.T) {
	packed, deg, err := astro.ParseRA("19:07:28.4")
	require.NoError(t, err)
	assert.InDelta(t, 190728.4, packed, 1e-9)
	assert.InDelta(t, (19+7.0/60+28.4/3600)*15, deg, 1e-12)
}

func TestParseDec(t *testing.T) {
	packed, deg, err := astro.ParseDec("-06:30:00")
	require.NoError(t, err)
	assert.InDelta(t, -63000.0, packed, 1e-9)
	assert.InDelta(t, -6.5, deg, 1e-12)
}

func TestParseSexagesimalRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"19:07",
		"19h07m28s",
		"19:7:28",
		"19:60:00",
		"19:07:60",
		"19:07:28.",
		" 19:07:28",
		"+-19:07:28",
	} {
		_, err := astro.ParseSexagesimal(in)
		var perr *astro.ParseError
		require.True(t, errors.As(err, &perr), "input %q", in)
	}
}

func TestParseRARange(t *testing.T) {
	_, _, err := astro.ParseRA("24:00:00")
	require.Error(t, err)
	_, _, err = astro.ParseRA("-01:00:00")
	require.Error(t, err)
	_, _, err = astro.ParseDec("+91:00:00")
	require.Error(t, err)
}

func TestEquatorialToGalactic(t *testing.T) {
	// Galactic centre
	l, b := astro.EquatorialToGalactic(266.40499, -28.93617)
	assert.True(t, l < 0.01 || l > 359.99, "l = %v", l)
	assert.InDelta(t, 0, b, 0.01)

	// North galactic pole
	_, b = astro.EquatorialToGalactic(192.85948, 27.12825)
	assert.InDelta(t, 90, b, 0.01)

	// Crab pulsar, l=184.5575 b=-5.7843
	l, b = astro.EquatorialToGalactic(83.633212, 22.014460)
	assert.InDelta(t, 184.5575, l, 0.01)
	assert.InDelta(t, -5.7843, b, 0.01)
}
