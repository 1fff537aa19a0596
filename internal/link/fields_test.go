package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		input string
		want  Fields
		err   bool
	}{
		{input: "id=_id,source=from,target=to", want: Fields{{"id", "_id"}, {"source", "from"}, {"target", "to"}}},
		{input: " source = from , weight ,", want: Fields{{"source", "from"}, {"weight", "weight"}}},
		{input: "", want: Fields{}},
		{input: "=from", err: true},
		{input: "source=", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFields(tt.input)
			if tt.err {
				assert.ErrorIs(t, err, ErrFieldsFormat)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFields_Lookup(t *testing.T) {
	fields := Fields{{"id", "_id"}, {"source", "from"}}

	physical, ok := fields.Physical("source")
	assert.True(t, ok)
	assert.Equal(t, "from", physical)

	logical, ok := fields.Logical("_id")
	assert.True(t, ok)
	assert.Equal(t, "id", logical)

	_, ok = fields.Physical("target")
	assert.False(t, ok)

	assert.Equal(t, "id=_id,source=from", fields.String())
}

func TestUndefined(t *testing.T) {
	assert.True(t, IsUndefined(Undefined))
	assert.False(t, IsUndefined(nil))
	assert.False(t, IsUndefined("undefined"))

	l := Link{IDField: "a", SourceField: "x"}
	c := l.Clone()
	c[TargetField] = "y"
	assert.NotContains(t, l, TargetField)

	id, ok := l.ID()
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}
