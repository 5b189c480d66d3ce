package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSampleProject(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(`package main

func add(a, b int) int {
	return a + b
}
`), 0644))
}

func TestRunInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{}

	require.NoError(t, runInit(cmd, []string{dir}))
	_, err := os.Stat(filepath.Join(dir, ".anamnesis", "config.json"))
	assert.NoError(t, err)
}

func TestRunLearnThenCheckReportsHealthy(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)

	learnCmd := &cobra.Command{}
	require.NoError(t, runLearn(learnCmd, []string{dir}))

	checkCmd := &cobra.Command{}
	checkCmd.Flags().Bool("validate", false, "")
	checkCmd.Flags().Bool("performance", false, "")
	assert.NoError(t, runCheck(checkCmd, []string{dir}))
}

func TestRunAnalyzeReportsNoError(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)

	cmd := &cobra.Command{}
	require.NoError(t, runAnalyze(cmd, []string{dir}))
}

func TestRunLearnTwiceShortCircuitsWithoutForce(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	forceLearn = false
	defer func() { forceLearn = false }()

	cmd := &cobra.Command{}
	require.NoError(t, runLearn(cmd, []string{dir}))
	require.NoError(t, runLearn(cmd, []string{dir}))
}
