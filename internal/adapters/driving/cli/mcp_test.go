package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_HasServe(t *testing.T) {
	names := make([]string, 0, len(mcpCmd.Commands()))
	for _, c := range mcpCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresServices(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	applyServices(&Services{})

	_, err := runCmd(t, "mcp", "serve")

	require.Error(t, err)
	assert.Equal(t, ExitUnavailable, ExitCode(err))
}
