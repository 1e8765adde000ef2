package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-15", "2024-03-15"},
		{"03/15/2024", "2024-03-15"},
		{"3/5/2024", "2024-03-05"},
		{"03/15/24", "2024-03-15"},
		{"03-15-2024", "2024-03-15"},
		{" 2024-03-15 ", "2024-03-15"},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, d.String(), tc.in)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not a date", "2024/15/03", "15th March"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDateOrdering(t *testing.T) {
	start := MustDate("2024-03-01")
	end := MustDate("2024-03-15")

	assert.True(t, start.Before(end))
	assert.True(t, end.After(start))
	assert.False(t, start.Before(start))
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		PayDate Date `json:"pay_date"`
		Missing Date `json:"missing"`
	}

	data, err := json.Marshal(payload{PayDate: MustDate("2024-03-15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pay_date":"2024-03-15","missing":null}`, string(data))

	var back payload
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "2024-03-15", back.PayDate.String())
	assert.True(t, back.Missing.IsZero())
}
