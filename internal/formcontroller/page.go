package formcontroller

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"anchor-rag/internal/sanitize"
)

// MemoryPage holds form state in memory. It implements every element
// handle, so Elements can hand the same page to the controller.
type MemoryPage struct {
	mu         sync.Mutex
	prompt     string
	disabled   bool
	msgKind    Kind
	msgText    string
	msgVisible bool
	panels     []*Panel
}

func NewMemoryPage(prompt string) *MemoryPage {
	return &MemoryPage{prompt: prompt}
}

func (p *MemoryPage) Elements() Elements {
	return Elements{Form: p, Submit: p, Prompt: p, Message: p, Documents: p}
}

func (p *MemoryPage) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompt = ""
}

func (p *MemoryPage) SetDisabled(disabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled = disabled
}

func (p *MemoryPage) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompt
}

func (p *MemoryPage) SetPrompt(prompt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompt = prompt
}

// Show replaces the type class; a message never carries both.
func (p *MemoryPage) Show(kind Kind, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgKind, p.msgText, p.msgVisible = kind, text, true
}

func (p *MemoryPage) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgVisible = false
}

func (p *MemoryPage) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panels = nil
}

func (p *MemoryPage) Append(panel *Panel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panels = append(p.panels, panel)
}

func (p *MemoryPage) Disabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disabled
}

// Message returns the current message and whether it is visible.
func (p *MemoryPage) Message() (Kind, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgKind, p.msgText, p.msgVisible
}

func (p *MemoryPage) Panels() []*Panel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Panel(nil), p.panels...)
}

// TerminalPage renders a submission as text. Panels print collapsed
// (label only) unless Expand is set.
type TerminalPage struct {
	W      io.Writer
	Expand bool

	prompt string
}

func NewTerminalPage(w io.Writer, prompt string, expand bool) *TerminalPage {
	return &TerminalPage{W: w, Expand: expand, prompt: prompt}
}

func (t *TerminalPage) Elements() Elements {
	return Elements{Form: t, Submit: t, Prompt: t, Message: t, Documents: t}
}

func (t *TerminalPage) Reset() { t.prompt = "" }
func (t *TerminalPage) SetDisabled(bool) {}
func (t *TerminalPage) Value() string { return t.prompt }
func (t *TerminalPage) Hide() {}
func (t *TerminalPage) Clear() {}

func (t *TerminalPage) Show(kind Kind, text string) {
	fmt.Fprintf(t.W, "[%s] %s\n", kind, text)
}

func (t *TerminalPage) Append(p *Panel) {
	if !t.Expand {
		fmt.Fprintf(t.W, "  + %s\n", p.Label)
		return
	}
	p.Toggle()
	fmt.Fprintf(t.W, "  - %s\n", p.Label)
	for _, line := range strings.Split(sanitize.Text(p.Content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(t.W, "      %s\n", line)
		}
	}
}
