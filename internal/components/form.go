package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"anchor-rag/internal/formcontroller"
)

// FormState is what the query form shows. The zero value is a fresh form.
type FormState struct {
	Prompt         string
	MessageKind    formcontroller.Kind
	MessageText    string
	MessageVisible bool
	Panels         []formcontroller.PanelDescriptor
}

// QueryForm renders #signup-form. The script at /assets/js/main.js takes it
// over; without scripts it posts to /ask and the server renders the result.
func QueryForm(state FormState) g.Node {
	return g.Group([]g.Node{
		g.El("form",
			ID("signup-form"),
			Method("post"),
			Action("/ask"),
			Input(
				Type("text"),
				Name("prompt"),
				ID("prompt"),
				Placeholder("Ask the library a question"),
				Value(state.Prompt),
				AutoComplete("off"),
			),
			Input(Type("submit"), Value("Ask")),
			Message(state),
		),
		DocumentsContainer(state.Panels),
	})
}

// Message is the status line appended to the form.
func Message(state FormState) g.Node {
	classes := "message"
	if state.MessageKind != "" {
		classes += " " + string(state.MessageKind)
	}
	if state.MessageVisible {
		classes += " visible"
	}
	return Span(Class(classes), g.Text(state.MessageText))
}

// DocumentsContainer holds one collapsed panel per source document. Server
// rendered panels use <details> so they toggle without scripts.
func DocumentsContainer(panels []formcontroller.PanelDescriptor) g.Node {
	return Div(
		ID("documentsContainer"),
		g.Group(g.Map(panels, func(p formcontroller.PanelDescriptor) g.Node {
			return Details(
				Class("source-document"),
				Summary(ID(p.ToggleID), Class("button small"), g.Text(p.Label)),
				Div(
					ID(p.ContainerID),
					Class("collapse"),
					g.Raw(p.Content),
				),
			)
		})),
	)
}
