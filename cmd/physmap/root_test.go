package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"build", "dump", "verify", "snapshot", "restore"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, cmd.Name())
	}
}

func TestRootCommand_Execute(t *testing.T) {
	img := buildImage(t)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	resetFlags()
	rootCmd.SetArgs([]string{"verify", "--no-color", img})
	output, err := captureOutput(t, rootCmd.Execute)
	require.NoError(t, err)
	require.Contains(t, output, "OK "+img)
}

func TestRootCommand_ArgCount(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	resetFlags()
	rootCmd.SetArgs([]string{"dump"})
	require.Error(t, rootCmd.Execute())
}

func TestPrintHelpers_Quiet(t *testing.T) {
	resetFlags()
	quiet = true
	verbose = true

	output, err := captureOutput(t, func() error {
		printInfo("info\n")
		printVerbose("verbose\n")
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, output)
}
