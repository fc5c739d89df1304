package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExportCmd(t *testing.T) {
	cmd := newExportCmd()

	assert.Equal(t, "export", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup(exportDirFlagName))
}

func TestExportCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.AddCommand(newExportCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "extra"})

	err := cmd.Execute()
	require.Error(t, err)
}
