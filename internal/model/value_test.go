package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-16")
	require.NoError(t, err)
	assert.Equal(t, MustDate(2024, time.June, 16), d)

	// Timestamp keeps the date written in the string
	d, err = ParseDate("2024-06-16T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, MustDate(2024, time.June, 16), d)

	_, err = ParseDate("2024-02-30")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseDate("next tuesday")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDateOrdering(t *testing.T) {
	a := MustDate(2024, time.June, 15)
	b := MustDate(2024, time.June, 16)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.False(t, a.After(a))
	assert.Equal(t, "June 15, 2024", a.Human())
}

func TestNewSelection(t *testing.T) {
	s := NewSelection("DIABETES", "ASTHMA", "DIABETES", " ")
	assert.Equal(t, Selection{"ASTHMA", "DIABETES"}, s)
	assert.True(t, s.Contains("ASTHMA"))
	assert.False(t, s.Contains("ANEMIA"))
}

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue(KindText, "Jane")
	require.NoError(t, err)
	assert.Equal(t, Text("Jane"), v)

	v, err = DecodeValue(KindNumeric, float64(42))
	require.NoError(t, err)
	assert.Equal(t, Text("42"), v)

	v, err = DecodeValue(KindDate, "2024-06-16")
	require.NoError(t, err)
	assert.Equal(t, MustDate(2024, time.June, 16), v)

	// Unparseable dates survive as text for the validator to report
	v, err = DecodeValue(KindDate, "06/16/2024")
	require.NoError(t, err)
	assert.Equal(t, Text("06/16/2024"), v)

	v, err = DecodeValue(KindDate, "")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = DecodeValue(KindMultiCheckbox, []interface{}{"ASTHMA", "ANEMIA"})
	require.NoError(t, err)
	assert.Equal(t, Selection{"ANEMIA", "ASTHMA"}, v)

	v, err = DecodeValue(KindMultiCheckbox, map[string]interface{}{"ASTHMA": true, "ANEMIA": false})
	require.NoError(t, err)
	assert.Equal(t, Selection{"ASTHMA"}, v)

	_, err = DecodeValue(KindText, true)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodeValue(KindMultiCheckbox, "ASTHMA")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestIsUnset(t *testing.T) {
	assert.True(t, IsUnset(nil))
	assert.True(t, IsUnset(Text("   ")))
	assert.True(t, IsUnset(Selection{}))
	assert.False(t, IsUnset(Text("x")))
	assert.False(t, IsUnset(MustDate(2024, time.January, 1)))
}

func TestEncodeValues(t *testing.T) {
	out := EncodeValues(Values{
		"name": Text("Jane"),
		"dob":  MustDate(1990, time.March, 4),
		"meds": Selection{"SSRI: Prozac"},
		"gone": nil,
	})
	assert.Equal(t, "Jane", out["name"])
	assert.Equal(t, "1990-03-04", out["dob"])
	assert.Equal(t, []string{"SSRI: Prozac"}, out["meds"])
	assert.Nil(t, out["gone"])
}
