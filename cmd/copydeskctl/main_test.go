package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args, feeding stdin.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		prettyOutput, plainOutput = false, false
		allCount, unfinishedCount, stage = 0, 0, 0
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSanitizeCmd_Stdin(t *testing.T) {
	out, err := run(t, `<p onclick="x()">a</p><script>alert(1)</script><p>b</p>`, "sanitize")

	require.NoError(t, err)
	assert.Equal(t, "<p>a</p><p>b</p>\n", out)
}

func TestSanitizeCmd_PrettyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desc.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>a</p><h2>c</h2>`), 0o644))

	out, err := run(t, "", "sanitize", "--pretty", path)

	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>\n<h2>c</h2>\n", out)
}

func TestSanitizeCmd_MissingFile(t *testing.T) {
	_, err := run(t, "", "sanitize", filepath.Join(t.TempDir(), "nope.html"))

	assert.Error(t, err)
}

func TestPublishPreviewCmd_Plain(t *testing.T) {
	out, err := run(t, "<p>Soft <strong>linen</strong></p>", "publish-preview", "--plain")

	require.NoError(t, err)
	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "linen")
}

func TestPublishPreviewCmd_StripsScripts(t *testing.T) {
	out, err := run(t, `<p>ok</p><script>alert(1)</script>`, "publish-preview")

	require.NoError(t, err)
	assert.Contains(t, out, "<p>ok</p>")
	assert.NotContains(t, out, "script")
}

func TestWordsCmd(t *testing.T) {
	out, err := run(t, "<p>Soft <em>cotton</em> tee.</p>", "words")

	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestProgressCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"half done", []string{"--all", "4", "--unfinished", "2"}, "50.0%\n"},
		{"inside an item", []string{"--all", "4", "--unfinished", "2", "--stage", "1"}, "58.3%\n"},
		{"empty job", []string{"--all", "0"}, "hidden\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append([]string{"progress"}, tt.args...)...)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestProgressCmd_RejectsInconsistentCounts(t *testing.T) {
	_, err := run(t, "", "progress", "--all", "2", "--unfinished", "3")

	assert.Error(t, err)
}
