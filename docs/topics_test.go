package docs

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TestReadmeIndex checks that the readme lists exactly the topics.
func TestReadmeIndex(t *testing.T) {
	readme, err := Topic("readme")
	require.NoError(t, err)

	var listed []string
	for _, m := range regexp.MustCompile(`(?m)^\* (\w+):`).FindAllStringSubmatch(readme, -1) {
		listed = append(listed, m[1])
	}
	topics, err := List()
	require.NoError(t, err)
	assert.Equal(t, topics, listed)
}

func TestTopic(t *testing.T) {
	all, err := Topic("*")
	require.NoError(t, err)
	for _, title := range []string{"# fol", "# Configuration", "# Ledger", "# Metrics", "# Sources"} {
		assert.Contains(t, all, title)
	}
	assert.Less(t, strings.Index(all, "# fol"), strings.Index(all, "# Configuration"), "readme comes first")

	_, err = Topic("unknown")
	assert.Error(t, err)
	_, err = Topics("config", "unknown")
	assert.Error(t, err)
}

// snippet is a fenced code block of a topic.
type snippet struct {
	lang, code string
	pos        string // file:line
}

// TestSnippets checks that the documented configurations and ledgers are valid.
func TestSnippets(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)
	for _, file := range files {
		for _, s := range snippets(t, file) {
			t.Run(s.pos, func(t *testing.T) {
				switch s.lang {
				case "yaml":
					path := filepath.Join(t.TempDir(), "folio.yaml")
					require.NoError(t, os.WriteFile(path, []byte(s.code), 0o644))
					_, err := folio.LoadConfig(path)
					assert.NoError(t, err)
				case "csv", "jsonl":
					orders, err := ledger.Decode(strings.NewReader(s.code), ledger.Format(s.lang))
					assert.NoError(t, err)
					assert.NotEmpty(t, orders)
				default:
					t.Errorf("unknown snippet language %q", s.lang)
				}
			})
		}
	}
}

func snippets(t *testing.T, file string) []snippet {
	t.Helper()
	source, err := os.ReadFile(file)
	require.NoError(t, err)

	var res []snippet
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		block, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var code bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(source))
		}
		line := bytes.Count(source[:lines.At(0).Start], []byte("\n"))
		res = append(res, snippet{
			lang: string(block.Language(source)),
			code: code.String(),
			pos:  file + ":" + strconv.Itoa(line),
		})
		return ast.WalkSkipChildren, nil
	})
	require.NoError(t, err)
	return res
}
