package execextract

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh")
	}
}

func newShellExtractor(t *testing.T, script string) *Extractor {
	t.Helper()
	e, err := New(Config{Command: "sh", Args: []string{"-c", script}})
	require.NoError(t, err)
	return e
}

func TestNew_RequiresCommand(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_DefaultTypes(t *testing.T) {
	e, err := New(Config{Command: "true"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.DocumentType{
		domain.DocumentTypePDF,
		domain.DocumentTypeDOCX,
		domain.DocumentTypeDOC,
	}, e.SupportedTypes())
}

func TestExtract_ParsesToolOutput(t *testing.T) {
	requireShell(t)
	e := newShellExtractor(t, `cat > /dev/null; cat <<'EOF'
{
  "text": "extracted body",
  "title": "Report",
  "authors": ["A. Author"],
  "pageCount": 4,
  "headings": [{"level": 1, "text": "Report", "page": 1}],
  "tables": [{"data": [["h1", "h2"], ["a", "b"]], "caption": "Table 1", "page": 2}]
}
EOF`)

	ext, err := e.Extract(context.Background(), "report.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "extracted body", ext.Text)
	assert.Equal(t, "Report", ext.Title)
	assert.Equal(t, []string{"A. Author"}, ext.Authors)
	assert.Equal(t, 4, ext.PageCount)
	require.Len(t, ext.Headings, 1)
	assert.Equal(t, domain.ExtractedHeading{Level: 1, Text: "Report", Page: 1}, ext.Headings[0])
	require.Len(t, ext.Tables, 1)
	assert.Equal(t, [][]string{{"h1", "h2"}, {"a", "b"}}, ext.Tables[0].Data)
}

func TestExtract_ReceivesContentOnStdin(t *testing.T) {
	requireShell(t)
	// Echo the stdin back as the extracted text.
	e := newShellExtractor(t, `printf '{"text":"%s"}' "$(cat)"`)

	ext, err := e.Extract(context.Background(), "doc.docx", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "payload", ext.Text)
}

func TestExtract_NonZeroExit(t *testing.T) {
	requireShell(t)
	e := newShellExtractor(t, `echo "conversion blew up" >&2; exit 3`)

	_, err := e.Extract(context.Background(), "report.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "conversion blew up")
}

func TestExtract_MalformedOutput(t *testing.T) {
	requireShell(t)
	e := newShellExtractor(t, `cat > /dev/null; echo "this is not json"`)

	_, err := e.Extract(context.Background(), "report.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_EmptyText(t *testing.T) {
	requireShell(t)
	e := newShellExtractor(t, `cat > /dev/null; echo '{"text":"  "}'`)

	_, err := e.Extract(context.Background(), "report.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_Timeout(t *testing.T) {
	requireShell(t)
	e, err := New(Config{
		Command: "sh",
		Args:    []string{"-c", "sleep 10"},
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), "report.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
