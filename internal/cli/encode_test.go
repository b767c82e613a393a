package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/toon/internal/compress"
)

const usersJSON = `{"users":[{"id":1,"name":"Ada"},{"id":2,"name":"Bob"}]}`

const usersTOON = "users[2]{id,name}:\n  1,Ada\n  2,Bob\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)

	plain, _, err := compress.Decompress(compress.Detect(path, data), data, 1<<20)
	require.NoError(t, err)

	return string(plain)
}

func compressed(t *testing.T, codec compress.Codec, content string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := compress.NewWriter(codec, &buf)
	require.NoError(t, err)

	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// Standard input and output
// ---------------------------------------------------------------------------

func TestEncodeCommand_Stdin(t *testing.T) {
	stdout, _, err := executeCommandWithInput(strings.NewReader(usersJSON), "encode")
	require.NoError(t, err)
	assert.Equal(t, usersTOON, stdout)
}

func TestEncodeCommand_StdinDash(t *testing.T) {
	stdout, _, err := executeCommandWithInput(strings.NewReader("name: Ada\ntags: [a, b]\n"), "encode", "-")
	require.NoError(t, err)
	assert.Equal(t, "name: Ada\ntags[2]: a,b\n", stdout)
}

func TestEncodeCommand_EncodingFlags(t *testing.T) {
	stdout, _, err := executeCommandWithInput(strings.NewReader(usersJSON),
		"--delimiter", "pipe", "--length-marker", "#", "--indent", "4", "encode")
	require.NoError(t, err)
	assert.Equal(t, "users[#2|]{id|name}:\n    1|Ada\n    2|Bob\n", stdout)
}

func TestEncodeCommand_EnvSettings(t *testing.T) {
	t.Setenv("TOON_DELIMITER", "tab")

	stdout, _, err := executeCommandWithInput(strings.NewReader(`{"tags":["a","b"]}`), "encode")
	require.NoError(t, err)
	assert.Equal(t, "tags[2\t]: a\tb\n", stdout)
}

func TestEncodeCommand_InputFormat(t *testing.T) {
	stdout, _, err := executeCommandWithInput(strings.NewReader("a: 1\n"), "encode", "--input-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", stdout)

	_, _, err = executeCommandWithInput(strings.NewReader("a: 1\n"), "encode", "--input-format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding - as json")

	_, _, err = executeCommandWithInput(strings.NewReader("{}"), "encode", "--input-format", "xml")
	requireExitCode(t, err, 2)
}

func TestEncodeCommand_MultipleFilesToStdout(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"a":1}`)
	b := writeFile(t, dir, "b.yaml", "b: [1, 2]\n")

	stdout, _, err := executeCommand("encode", a, b)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n\nb[2]: 1,2\n", stdout)
}

func TestEncodeCommand_StdinTwice(t *testing.T) {
	_, _, err := executeCommandWithInput(strings.NewReader("{}"), "encode", "-", "-")
	requireExitCode(t, err, 2)
}

func TestEncodeCommand_MissingFile(t *testing.T) {
	_, _, err := executeCommand("encode", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening input")
}

// ---------------------------------------------------------------------------
// Compression
// ---------------------------------------------------------------------------

func TestEncodeCommand_CompressedInput(t *testing.T) {
	for _, codec := range []compress.Codec{compress.Gzip, compress.Zstd, compress.LZ4} {
		t.Run(string(codec), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "users.json"+compress.Extension(codec))
			require.NoError(t, os.WriteFile(path, compressed(t, codec, usersJSON), 0o600))

			stdout, _, err := executeCommand("encode", path)
			require.NoError(t, err)
			assert.Equal(t, usersTOON, stdout)
		})
	}
}

func TestEncodeCommand_CompressedStdin(t *testing.T) {
	stdout, _, err := executeCommandWithInput(bytes.NewReader(compressed(t, compress.Zstd, usersJSON)), "encode")
	require.NoError(t, err)
	assert.Equal(t, usersTOON, stdout)
}

func TestEncodeCommand_CompressedStdout(t *testing.T) {
	stdout, _, err := executeCommandWithInput(strings.NewReader(usersJSON), "encode", "--compress", "gzip")
	require.NoError(t, err)
	assert.Equal(t, compress.Gzip, compress.Sniff([]byte(stdout)))

	plain, _, err := compress.Decompress(compress.Gzip, []byte(stdout), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, usersTOON, string(plain))
}

func TestEncodeCommand_UnknownCompression(t *testing.T) {
	_, _, err := executeCommandWithInput(strings.NewReader("{}"), "encode", "--compress", "brotli")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "unknown compression")
}

// ---------------------------------------------------------------------------
// Output files
// ---------------------------------------------------------------------------

func TestEncodeCommand_OutputFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "users.json", usersJSON)
	out := filepath.Join(dir, "nested", "users.toon")

	stdout, _, err := executeCommand("encode", in, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, usersTOON, readOutput(t, out))
}

func TestEncodeCommand_OutputFileCompressedByExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "users.json", usersJSON)
	out := filepath.Join(dir, "users.toon.zst")

	_, _, err := executeCommand("encode", in, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, compress.Zstd, compress.Sniff(data))
	assert.Equal(t, usersTOON, readOutput(t, out))
}

func TestEncodeCommand_OutputRequiresSingleInput(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{}`)
	b := writeFile(t, dir, "b.json", `{}`)

	_, _, err := executeCommand("encode", a, b, "-o", filepath.Join(dir, "out.toon"))
	requireExitCode(t, err, 2)
}

func TestEncodeCommand_OutputFlagsExclusive(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{}`)

	_, _, err := executeCommand("encode", a, "-o", filepath.Join(dir, "a.toon"), "--output-dir", dir)
	requireExitCode(t, err, 2)
}

func TestEncodeCommand_OutputDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	paths := []string{
		writeFile(t, dir, "users.json", usersJSON),
		writeFile(t, dir, "config.yaml", "name: api\nreplicas: 3\n"),
		writeFile(t, dir, "tags.yml", "- a\n- b\n"),
	}

	args := append([]string{"encode", "--output-dir", outDir, "--workers", "2"}, paths...)

	stdout, _, err := executeCommand(args...)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	assert.Equal(t, usersTOON, readOutput(t, filepath.Join(outDir, "users.toon")))
	assert.Equal(t, "name: api\nreplicas: 3\n", readOutput(t, filepath.Join(outDir, "config.toon")))
	assert.Equal(t, "[2]: a,b\n", readOutput(t, filepath.Join(outDir, "tags.toon")))
}

func TestEncodeCommand_OutputDirCompressed(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "users.json", usersJSON)

	_, _, err := executeCommand("encode", in, "--output-dir", dir, "--compress", "lz4")
	require.NoError(t, err)
	assert.Equal(t, usersTOON, readOutput(t, filepath.Join(dir, "users.toon.lz4")))
}

func TestEncodeCommand_OutputDirRejectsStdin(t *testing.T) {
	_, _, err := executeCommandWithInput(strings.NewReader("{}"), "encode", "--output-dir", t.TempDir())
	requireExitCode(t, err, 2)
}

func TestEncodeCommand_OutputDirInvalidWorkers(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "a.json", `{}`)

	_, _, err := executeCommand("encode", in, "--output-dir", dir, "--workers", "0")
	requireExitCode(t, err, 2)
}

func TestEncodeCommand_OutputDirReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"a":1}`)
	bad := writeFile(t, dir, "bad.json", `{"a":`)

	_, _, err := executeCommand("encode", good, bad, "--output-dir", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestEncodeCommand_OutputDirOverwriteWarningNamesSource(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "users.json", usersJSON)
	writeFile(t, dir, "users.toon", "stale\n")

	_, stderr, err := executeCommand("encode", in, "--output-dir", dir)
	require.NoError(t, err)

	assert.Contains(t, stderr, "overwriting existing file")
	assert.Contains(t, stderr, "source="+in)
	assert.Equal(t, usersTOON, readOutput(t, filepath.Join(dir, "users.toon")))
}
