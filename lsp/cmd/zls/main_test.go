package main

import (
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_HelpFlag(t *testing.T) {
	err := run([]string{"-help"})
	require.NoError(t, err)
}

func TestRun_UnknownFlagRejected(t *testing.T) {
	err := run([]string{"--invalid-flag-xyz"})
	require.Error(t, err)
}

func TestRun_PositionalArgumentRejected(t *testing.T) {
	err := run([]string{"some-stray-argument"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected argument")
}

func TestRun_DebugLogFlagParses(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	debugLog := fs.Bool("debug-log", false, "")
	require.NoError(t, fs.Parse([]string{"--debug-log"}))
	require.True(t, *debugLog)
	require.Empty(t, fs.Args())
}

func TestNewLogger_Levels(t *testing.T) {
	logger, cleanup := newLogger(false)
	require.NotNil(t, logger)
	cleanup()

	debugLogger, cleanup2 := newLogger(true)
	require.NotNil(t, debugLogger)
	cleanup2()
}

func TestIsCleanShutdown(t *testing.T) {
	require.True(t, isCleanShutdown(io.EOF))
	require.False(t, isCleanShutdown(errors.New("boom")))
}

func TestFlagParsing_DebugLogDefault(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	debugLog := fs.Bool("debug-log", false, "")
	require.NoError(t, fs.Parse([]string{}))
	require.False(t, *debugLog)
}
