package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRegions = `exit_boot_services: false
firmware:
  - {type: Conventional, start: 0x100000, pages: 0x700, attributes: [UC, WB]}
  - {type: BootServicesData, start: 0x800000, pages: 0x10, attributes: [WB]}
  - {type: Reserved, start: 0x0, pages: 0x1}
reservations:
  - {type: KernelImage, start: 0x1000000, size: 0x3001, attributes: [WB]}
  - {type: PageTables, start: 0x2000000, pages: 4}
`

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	noColor = true
	buildExitBootServices = false
	dumpByType = false
	snapshotCompression = "zstd"
	snapshotBigEndian = false
	initLogger()
}

// writeFile writes content into dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// buildImage builds testRegions into a fresh image and returns its path.
func buildImage(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	in := writeFile(t, dir, "regions.yaml", testRegions)
	out := filepath.Join(dir, "boot.img")

	resetFlags()
	quiet = true
	require.NoError(t, runBuild([]string{in, out}))
	resetFlags()

	return out
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	return buf.String(), fnErr
}

// decodeJSON unmarshals command output into v.
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}
