package formcontroller

import (
	"fmt"
	"sync"
)

// Kind is the message type class.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// QueryResult is the decoded body of a query response.
type QueryResult struct {
	Result          string   `json:"result,omitempty"`
	Error           string   `json:"error,omitempty"`
	SourceDocuments []string `json:"source_documents,omitempty"`
}

// PanelDescriptor describes one source-document panel. Panels start hidden.
type PanelDescriptor struct {
	Index       int
	Label       string
	ToggleID    string
	ContainerID string
	Content     string
}

// View is everything a submission renders: one message and zero or more panels.
type View struct {
	Kind   Kind
	Text   string
	Panels []PanelDescriptor
}

// Render maps a decoded response to the view it produces. A non-empty error
// wins over any result; panels only accompany a success.
func Render(res QueryResult) View {
	if res.Error != "" {
		return View{Kind: KindFailure, Text: "Error: " + res.Error}
	}
	return View{
		Kind:   KindSuccess,
		Text:   "Result: " + res.Result,
		Panels: Panels(res.SourceDocuments),
	}
}

// RenderFailure is the view for a request that never produced a decoded body.
func RenderFailure(err error) View {
	return View{Kind: KindFailure, Text: "Error: " + err.Error()}
}

// Panels builds one descriptor per document, labelled from 1.
func Panels(docs []string) []PanelDescriptor {
	if len(docs) == 0 {
		return nil
	}
	out := make([]PanelDescriptor, len(docs))
	for i, doc := range docs {
		out[i] = PanelDescriptor{
			Index:       i,
			Label:       fmt.Sprintf("Source %d", i+1),
			ToggleID:    fmt.Sprintf("toggleButton%d", i),
			ContainerID: fmt.Sprintf("documentContainer%d", i),
			Content:     doc,
		}
	}
	return out
}

// Panel is a rendered descriptor with its own visibility state.
type Panel struct {
	PanelDescriptor

	mu      sync.Mutex
	visible bool
}

func NewPanel(d PanelDescriptor) *Panel {
	return &Panel{PanelDescriptor: d}
}

// Toggle flips this panel's visibility and returns the new state.
func (p *Panel) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = !p.visible
	return p.visible
}

func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}
