package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_AllStrategiesAgree(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "abc.txt")
	require.NoError(t, os.WriteFile(input, []byte("abcabcabc abracadabra mississippi"), 0o644))
	work := filepath.Join(dir, "work")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--no-progress", "--dir", work, "--sample-rate", "4", input}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	for _, name := range []string{"kasai", "simple_5n", "simple2_9n", "PHI", "semi_extern_PHI", "go", "go2", "goPHI", "bwt_based", "bwt_based2"} {
		require.Contains(t, out, name)
	}
	require.NotContains(t, out, "differs")
	require.NotContains(t, out, "error")

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRun_KeepIntermediate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(input, []byte(strings.Repeat("a", 100)), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"--no-progress", "-d", dir, "-s", "go,bwt_based2", "--keep", input}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	for _, name := range []string{"text_f0.sdsl", "sa_f0.sdsl", "bwt_f0.sdsl", "lcp_f0_reference.sdsl", "lcp_f0_go.sdsl", "lcp_f0_bwt_based2.sdsl"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("to be or not to be"), 0o644))
	cfg := filepath.Join(dir, "lcp.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("dir: "+dir+"\nstrategies: [PHI]\nlog_level: warn\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--no-progress", "-c", cfg, input}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "PHI")
	require.NotContains(t, stdout.String(), "goPHI")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	require.Error(t, run([]string{"--no-progress", "-d", dir}, &stdout, &stderr))
	require.Error(t, run([]string{"--no-progress", "-d", dir, "-s", "fast", "x"}, &stdout, &stderr))
	require.Error(t, run([]string{"--no-progress", "-d", dir, filepath.Join(dir, "missing")}, &stdout, &stderr))

	binary := filepath.Join(dir, "binary")
	require.NoError(t, os.WriteFile(binary, []byte{'a', 0, 'b'}, 0o644))
	require.Error(t, run([]string{"--no-progress", "-d", dir, binary}, &stdout, &stderr))

	require.NoError(t, run([]string{"--help"}, &stdout, &stderr))
}
