package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"

	"anchor-rag/internal/formcontroller"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestLandingFreshForm(t *testing.T) {
	out := render(t, Landing(FormState{}))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<form id="signup-form" method="post" action="/ask">`)
	assert.Contains(t, out, `id="prompt"`)
	assert.Contains(t, out, `type="submit"`)
	assert.Contains(t, out, `<span class="message"></span>`)
	assert.Contains(t, out, `<div id="documentsContainer"></div>`)
	assert.Contains(t, out, `<script src="/assets/js/main.js"></script>`)
	assert.Contains(t, out, `class="landing is-preload"`)
}

func TestLandingRenderedResult(t *testing.T) {
	view := formcontroller.Render(formcontroller.QueryResult{
		Result:          "Grace is unmerited favor.",
		SourceDocuments: []string{"<p>Doc A</p>", "<p>Doc B</p>"},
	})
	out := render(t, Landing(FormState{
		MessageKind:    view.Kind,
		MessageText:    view.Text,
		MessageVisible: true,
		Panels:         view.Panels,
	}))

	assert.Contains(t, out, `<span class="message success visible">Result: Grace is unmerited favor.</span>`)
	assert.Contains(t, out, `<summary id="toggleButton0" class="button small">Source 1</summary>`)
	assert.Contains(t, out, `<div id="documentContainer0" class="collapse"><p>Doc A</p></div>`)
	assert.Contains(t, out, `<summary id="toggleButton1" class="button small">Source 2</summary>`)
	assert.Contains(t, out, `<div id="documentContainer1" class="collapse"><p>Doc B</p></div>`)
	assert.Equal(t, 2, strings.Count(out, "<details"))
	assert.NotContains(t, out, "<details open", "panels start hidden")
}

func TestPromptIsEscaped(t *testing.T) {
	out := render(t, QueryForm(FormState{Prompt: `"><script>x</script>`}))
	assert.NotContains(t, out, "<script>x</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFailureMessage(t *testing.T) {
	out := render(t, Message(FormState{MessageKind: formcontroller.KindFailure, MessageText: "Error: Failed to fetch", MessageVisible: true}))
	assert.Equal(t, `<span class="message failure visible">Error: Failed to fetch</span>`, out)
}

func TestSecondaryPages(t *testing.T) {
	assert.Contains(t, render(t, Generic()), "<title>About - Anchor</title>")

	out := render(t, Elements([]string{".pdf", ".docx"}))
	assert.Contains(t, out, "<title>Library - Anchor</title>")
	assert.Contains(t, out, "<li><code>.pdf</code></li>")
	assert.NotContains(t, out, `class="landing`)
}
