package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"process", "batch", "serve", "export", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "oficio-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestProcessCommand_Flags(t *testing.T) {
	for _, name := range []string{"pdf", "tax-id", "no-extract", "explain", "save"} {
		require.NotNil(t, processCmd.Flags().Lookup(name), "process command should have --%s flag", name)
	}
	assert.Equal(t, "false", processCmd.Flags().Lookup("explain").DefValue)
}

func TestBatchCommand_Flags(t *testing.T) {
	flag := batchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
	require.NotNil(t, batchCmd.Flags().Lookup("no-extract"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "json", flag.DefValue)
	for _, name := range []string{"out", "tax-id", "rejected", "needs-review"} {
		require.NotNil(t, exportCmd.Flags().Lookup(name), "export command should have --%s flag", name)
	}
}

func TestRootCommand_LogLevelFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}
