package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`"true"`, true},
		{`"false"`, false},
		{`"TRUE"`, true},
		{`" 1 "`, true},
		{`""`, false},
		{`"yes"`, false}, // unrecognized strings normalize to false
		{`null`, false},
		{`2`, true},
	}

	for _, tc := range cases {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(tc.in), &b), "input %s", tc.in)
		assert.Equal(t, tc.want, b.Bool(), "input %s", tc.in)
	}
}

func TestFlexBoolMarshalStrict(t *testing.T) {
	out, err := json.Marshal(FlexBool(true))
	require.NoError(t, err)
	assert.Equal(t, `true`, string(out))

	out, err = json.Marshal(FlexBool(false))
	require.NoError(t, err)
	assert.Equal(t, `false`, string(out))
}
