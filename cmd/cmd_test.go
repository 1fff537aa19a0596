package cmd

import (
	"io"
	"testing"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	values, err := parsePairs([]string{"source=a", "weight=2", "tags=[\"x\"]", "note=a=b", "flag=true"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"source": "a",
		"weight": float64(2),
		"tags":   []any{"x"},
		"note":   "a=b",
		"flag":   true,
	}, values)

	values, err = parsePairs(nil)
	require.NoError(t, err)
	assert.Nil(t, values)

	_, err = parsePairs([]string{"source"})
	assert.Error(t, err)

	_, err = parsePairs([]string{"=a"})
	assert.Error(t, err)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, []v1.SortKey{
		{Field: "source", Ascending: true},
		{Field: "target"},
	}, parseSort([]string{"source", "-target"}))
}

func TestSelectorFlags(t *testing.T) {
	var sel selectorFlags
	command := &cobra.Command{Use: "test"}
	sel.register(command)

	require.NoError(t, command.ParseFlags([]string{"-i", "l1", "-l", "source=a", "--undefined", "weight,label"}))

	selector, err := sel.selector()
	require.NoError(t, err)
	assert.Equal(t, &v1.Selector{
		Id:        "l1",
		Link:      map[string]any{"source": "a"},
		Undefined: []string{"weight", "label"},
	}, selector)
}

func TestCheckMissingFlags(t *testing.T) {
	var id string
	command := &cobra.Command{Use: "test"}
	command.Flags().StringVar(&id, "id", "", "")
	command.SetOut(io.Discard)

	assert.True(t, checkMissingFlags(command, []string{"id"}))

	require.NoError(t, command.ParseFlags([]string{"--id", "l1"}))
	assert.False(t, checkMissingFlags(command, []string{"id"}))
}

func TestSelectorFlags_Missing(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		missing bool
	}{
		{name: "no selector", args: nil, missing: true},
		{name: "id", args: []string{"-i", "l1"}, missing: false},
		{name: "link", args: []string{"-l", "source=a"}, missing: false},
		{name: "undefined", args: []string{"--undefined", "weight"}, missing: false},
		{name: "all", args: []string{"--all"}, missing: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sel selectorFlags
			command := &cobra.Command{Use: "test"}
			command.SetOut(io.Discard)
			sel.registerMutating(command)

			require.NoError(t, command.ParseFlags(tt.args))
			assert.Equal(t, tt.missing, sel.missing(command))
		})
	}
}

func TestRemoveLinkCmd_RequiresSelector(t *testing.T) {
	command := removeLinkCmd()
	command.SetOut(io.Discard)
	command.SetArgs([]string{})

	// returns before dialing the service
	assert.NoError(t, command.Execute())
}
