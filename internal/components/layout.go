package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type PageConfig struct {
	Title       string
	Description string
	// Landing pages get the transparent header over the banner.
	Landing bool
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = "Anchor - Research Assistant"
	}

	if config.Description == "" {
		config.Description = "Ask questions of the Anchor research library and read the sources behind every answer."
	}

	bodyClass := "is-preload"
	if config.Landing {
		bodyClass = "landing is-preload"
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1, user-scalable=no")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),
				Link(Rel("stylesheet"), Href("/assets/css/main.css")),
			),
			Body(
				Class(bodyClass),
				Div(
					ID("page-wrapper"),
					PageHeader(config.Landing),
					g.Group(content),
					PageFooter(),
				),
				Script(Src("/assets/js/main.js")),
			),
		),
	})
}

func PageHeader(alt bool) g.Node {
	class := ""
	if alt {
		class = "alt"
	}
	return Header(
		ID("header"),
		g.If(class != "", Class(class)),
		H1(A(Href("/"), g.Text("Anchor"))),
		Nav(
			ID("nav"),
			Ul(
				Li(Class("special"),
					A(Href("#menu"), Class("menuToggle"), Span(g.Text("Menu"))),
					Div(
						ID("menu"),
						Ul(
							Li(A(Href("/"), g.Text("Home"))),
							Li(A(Href("/generic"), g.Text("About"))),
							Li(A(Href("/elements"), g.Text("Library"))),
						),
					),
				),
			),
		),
	)
}

func PageFooter() g.Node {
	return Footer(
		ID("footer"),
		Ul(
			Class("copyright"),
			Li(g.Text("© Anchor")),
			Li(g.Text("Design: "), A(Href("http://html5up.net"), g.Text("HTML5 UP"))),
		),
	)
}
