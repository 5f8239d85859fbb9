package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bikeshop/internal/cli"
)

func TestNewRootCommand(t *testing.T) {
	root := cli.NewRootCommand()

	for _, path := range [][]string{
		{"start"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"seed"},
		{"stock", "list"},
		{"stock", "restock"},
		{"worker", "run"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	start, _, err := root.Find([]string{"start"})
	require.NoError(t, err)
	assert.NotNil(t, start.Flags().Lookup("grpc"))

	restock, _, err := root.Find([]string{"stock", "restock"})
	require.NoError(t, err)
	for _, flag := range []string{"part", "id", "units"} {
		assert.NotNil(t, restock.Flags().Lookup(flag), flag)
	}
}
