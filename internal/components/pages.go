package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func Landing(state FormState) g.Node {
	return Layout(
		PageConfig{Landing: true},
		Banner(state),
		Section(
			ID("one"),
			Class("wrapper style1 special"),
			Div(
				Class("inner"),
				Header(
					Class("major"),
					H2(g.Text("Answers grounded in the sources")),
					P(g.Text("Every answer is drawn from the research library, and the passages it relied on are listed underneath so you can read them yourself.")),
				),
			),
		),
	)
}

func Banner(state FormState) g.Node {
	return Section(
		ID("banner"),
		Div(
			Class("inner"),
			H2(g.Text("Anchor")),
			P(g.Text("Ask a question of the research library.")),
			QueryForm(state),
		),
		A(Href("#one"), Class("more scrolly"), g.Text("Learn More")),
	)
}

func Generic() g.Node {
	return Layout(
		PageConfig{Title: "About - Anchor"},
		article(
			"About",
			P(g.Text("Anchor answers questions using retrieval-augmented generation: your question is matched against passages from the ingested library, and a language model answers from those passages only.")),
			P(g.Text("When the passages do not contain the answer, the assistant says it does not know rather than guessing.")),
		),
	)
}

// Elements lists the library formats that can be ingested.
func Elements(formats []string) g.Node {
	return Layout(
		PageConfig{Title: "Library - Anchor"},
		article(
			"Library",
			P(g.Text("Documents in these formats can be added to the library:")),
			Ul(
				Class("alt"),
				g.Group(g.Map(formats, func(f string) g.Node {
					return Li(Code(g.Text(f)))
				})),
			),
		),
	)
}

func article(title string, body ...g.Node) g.Node {
	return Article(
		ID("main"),
		Header(H2(g.Text(title))),
		Section(
			Class("wrapper style5"),
			Div(Class("inner"), g.Group(body)),
		),
	)
}
