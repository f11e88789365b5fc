package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	g "maragu.dev/gomponents"

	"anchor-rag/internal/components"
	"anchor-rag/internal/formcontroller"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func renderPage(w http.ResponseWriter, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		log.Error().Err(err).Msg("Error rendering page")
	}
}

func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	renderPage(w, components.Landing(components.FormState{}))
}

func (s *Server) elements(w http.ResponseWriter, r *http.Request) {
	renderPage(w, components.Elements(SupportedFormats))
}

func (s *Server) generic(w http.ResponseWriter, r *http.Request) {
	renderPage(w, components.Generic())
}

// answer runs the RAG query. Failures become the error field, never a Go
// error: the backend always answers with a decodable body.
func (s *Server) answer(ctx context.Context, prompt string) formcontroller.QueryResult {
	ans, err := s.querier.Query(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("prompt", prompt).Msg("Query failed")
		return formcontroller.QueryResult{Error: err.Error()}
	}
	return formcontroller.QueryResult{
		Result:          ans.Content,
		SourceDocuments: ans.SourceContents(),
	}
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, formcontroller.QueryResult{Error: "invalid request body: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.answer(r.Context(), req.Prompt))
}

// ask serves the form when scripts are off: it runs the same controller
// against an in-memory page and renders the page it leaves behind.
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	page := formcontroller.NewMemoryPage(r.PostFormValue("prompt"))
	ctrl, err := formcontroller.New(page.Elements(), formcontroller.QuerierFunc(
		func(ctx context.Context, prompt string) (*formcontroller.QueryResult, error) {
			res := s.answer(ctx, prompt)
			return &res, nil
		},
	))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = ctrl.Submit(r.Context())

	kind, text, visible := page.Message()
	state := components.FormState{
		Prompt:         page.Value(),
		MessageKind:    kind,
		MessageText:    text,
		MessageVisible: visible,
	}
	for _, p := range page.Panels() {
		state.Panels = append(state.Panels, p.PanelDescriptor)
	}
	renderPage(w, components.Landing(state))
}
