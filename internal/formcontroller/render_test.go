package formcontroller

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRenderSuccess(t *testing.T) {
	got := Render(QueryResult{
		Result:          "Grace is unmerited favor.",
		SourceDocuments: []string{"<p>Doc A</p>", "<p>Doc B</p>"},
	})

	want := View{
		Kind: KindSuccess,
		Text: "Result: Grace is unmerited favor.",
		Panels: []PanelDescriptor{
			{Index: 0, Label: "Source 1", ToggleID: "toggleButton0", ContainerID: "documentContainer0", Content: "<p>Doc A</p>"},
			{Index: 1, Label: "Source 2", ToggleID: "toggleButton1", ContainerID: "documentContainer1", Content: "<p>Doc B</p>"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderErrorWinsOverResult(t *testing.T) {
	got := Render(QueryResult{
		Result:          "ignored",
		Error:           "prompt must not be empty",
		SourceDocuments: []string{"<p>ignored</p>"},
	})
	assert.Equal(t, View{Kind: KindFailure, Text: "Error: prompt must not be empty"}, got)
}

func TestRenderNoDocuments(t *testing.T) {
	for _, docs := range [][]string{nil, {}} {
		got := Render(QueryResult{Result: "ok", SourceDocuments: docs})
		assert.Equal(t, KindSuccess, got.Kind)
		assert.Empty(t, got.Panels)
	}
}

func TestRenderExactlyOneOutcome(t *testing.T) {
	results := []QueryResult{
		{},
		{Result: "r"},
		{Error: "e"},
		{Result: "r", Error: "e"},
		{Result: "r", SourceDocuments: []string{"a"}},
	}
	for _, res := range results {
		v := Render(res)
		assert.Contains(t, []Kind{KindSuccess, KindFailure}, v.Kind, "%+v", res)
		assert.NotEmpty(t, v.Text)
		if v.Kind == KindFailure {
			assert.Empty(t, v.Panels)
		}
	}
}

func TestRenderFailure(t *testing.T) {
	assert.Equal(t, View{Kind: KindFailure, Text: "Error: Failed to fetch"}, RenderFailure(errors.New("Failed to fetch")))
}

func TestPanelsCountAndOrder(t *testing.T) {
	docs := make([]string, 12)
	for i := range docs {
		docs[i] = string(rune('a' + i))
	}
	panels := Panels(docs)
	assert.Len(t, panels, len(docs))
	for i, p := range panels {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, docs[i], p.Content)
	}
	assert.Equal(t, "Source 12", panels[11].Label)
}

func TestPanelToggleIndependence(t *testing.T) {
	panels := []*Panel{}
	for _, d := range Panels([]string{"a", "b", "c"}) {
		panels = append(panels, NewPanel(d))
	}
	for _, p := range panels {
		assert.False(t, p.Visible(), "panels start hidden")
	}

	assert.True(t, panels[1].Toggle())
	assert.False(t, panels[0].Visible())
	assert.True(t, panels[1].Visible())
	assert.False(t, panels[2].Visible())

	assert.False(t, panels[1].Toggle())
	assert.False(t, panels[1].Visible())
}
