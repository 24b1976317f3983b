package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/foomo/roadmapserver/pkg/repo/mock"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestTreeCommand(t *testing.T) {
	out := execute(t, NewTreeCommand(), mock.File("index-two-roots.json"), "--root", "Frontend")
	assert.Equal(t, "Frontend\n"+
		"\tInternet [internet@fff1]\n"+
		"\tHTML [html@fff2]\n"+
		"\t\tForms and Validations [forms-and-validations@fff3]\n", out)
}

func TestTreeCommandDefaultRoot(t *testing.T) {
	out := execute(t, NewTreeCommand(), mock.File("index-ok.json"))
	assert.Contains(t, out, "Cyber Security\n\tFundamental IT Skills [fundamental-it-skills@aaa1]\n")
	assert.Contains(t, out, "\t\tConnection Types\n\t\t\tNFC [nfc@aaa3]\n")
}

func TestTreeCommandJSON(t *testing.T) {
	out := execute(t, NewTreeCommand(), mock.File("index-two-roots.json"), "--root", "Frontend", "--json")
	assert.Contains(t, out, `"label": "Frontend"`)
	assert.Contains(t, out, `"nodeId": "fff3"`)
}

func TestTreeCommandHTML(t *testing.T) {
	out := execute(t, NewTreeCommand(), mock.File("index-two-roots.json"), "--root", "Frontend", "--html")
	assert.Contains(t, out, `data-roadmap-slug="frontend"`)
}

func TestTreeCommandMissingFile(t *testing.T) {
	cmd := NewTreeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{mock.File("index-no-have.json")})
	require.Error(t, cmd.Execute())
}

func TestTopicsCommand(t *testing.T) {
	out := execute(t, NewTopicsCommand(), mock.File("index-ok.json"))
	assert.Equal(t, "cloud-and-network-security@ccc1\tCloud & Network Security\n"+
		"fundamental-it-skills@aaa1\tFundamental IT Skills\n"+
		"operating-systems@bbb1\tOperating Systems\n"+
		"zero-days-impact@ddd1\tZero-Day's Impact\n", out)
}

func TestTopicsCommandJSON(t *testing.T) {
	out := execute(t, NewTopicsCommand(), mock.File("index-two-roots.json"), "--root", "Frontend", "--json")
	assert.Contains(t, out, `"nameSlug": "html"`)
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, NewVersionCommand(), "--short")
	assert.Equal(t, version+"\n", out)

	out = execute(t, NewVersionCommand())
	assert.True(t, strings.HasPrefix(out, "roadmapserver "+version+" ("+commit+") "))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"http", "tree", "topics", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
