package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDNewID(t *testing.T) {
	var g UUID
	a, b := g.NewID(), g.NewID()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSequence(t *testing.T) {
	s := &Sequence{Prefix: "pay"}
	assert.Equal(t, "pay-0001", s.NewID())
	assert.Equal(t, "pay-0002", s.NewID())
	assert.Equal(t, "pay-0003", s.NewID())
}

func TestShort(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0b6c1b4e-6f1a-4c3b-9a57-8d0f2d1e8c11", "0b6c1b4e"},
		{"pay-0001", "pay-0001"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Short(tt.input))
	}
}

func TestResolve(t *testing.T) {
	ids := []string{
		"0b6c1b4e-6f1a-4c3b-9a57-8d0f2d1e8c11",
		"0b6d0000-0000-4000-8000-000000000000",
		"f00d0000-0000-4000-8000-000000000000",
	}

	got, err := Resolve("f00d", ids)
	require.NoError(t, err)
	assert.Equal(t, ids[2], got)

	got, err = Resolve("0B6C1B4E", ids)
	require.NoError(t, err)
	assert.Equal(t, ids[0], got)

	got, err = Resolve(ids[1], ids)
	require.NoError(t, err)
	assert.Equal(t, ids[1], got)
}

func TestResolve_Errors(t *testing.T) {
	ids := []string{"0b6c1b4e", "0b6d0000"}

	badInputs := []string{"", "  ", "0b6", "ffff"}
	for _, input := range badInputs {
		_, err := Resolve(input, ids)
		assert.Error(t, err, "expected error for input: %q", input)
	}
}
