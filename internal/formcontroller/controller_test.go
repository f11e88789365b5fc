package formcontroller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPage wraps a MemoryPage and logs every element call in order.
type recordingPage struct {
	*MemoryPage
	mu    sync.Mutex
	calls []string
}

func newRecordingPage(prompt string) *recordingPage {
	return &recordingPage{MemoryPage: NewMemoryPage(prompt)}
}

func (r *recordingPage) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recordingPage) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingPage) SetDisabled(d bool) {
	if d {
		r.record("disable")
	} else {
		r.record("enable")
	}
	r.MemoryPage.SetDisabled(d)
}

func (r *recordingPage) Hide()  { r.record("hide"); r.MemoryPage.Hide() }
func (r *recordingPage) Reset() { r.record("reset"); r.MemoryPage.Reset() }
func (r *recordingPage) Clear() { r.record("clear"); r.MemoryPage.Clear() }

func (r *recordingPage) Value() string {
	r.record("read")
	return r.MemoryPage.Value()
}

func (r *recordingPage) Show(kind Kind, text string) {
	r.record("show:" + string(kind))
	r.MemoryPage.Show(kind, text)
}

func (r *recordingPage) Elements() Elements {
	return Elements{Form: r, Submit: r, Prompt: r, Message: r, Documents: r}
}

func static(res *QueryResult, err error) QuerierFunc {
	return func(context.Context, string) (*QueryResult, error) { return res, err }
}

func newController(t *testing.T, page *recordingPage, q Querier) *Controller {
	t.Helper()
	c, err := New(page.Elements(), q)
	require.NoError(t, err)
	return c
}

func TestSubmitSuccess(t *testing.T) {
	page := newRecordingPage("What is grace?")
	var sent string
	q := QuerierFunc(func(_ context.Context, prompt string) (*QueryResult, error) {
		sent = prompt
		return &QueryResult{
			Result:          "Grace is unmerited favor.",
			SourceDocuments: []string{"<p>Doc A</p>", "<p>Doc B</p>"},
		}, nil
	})
	c := newController(t, page, q)

	view, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "What is grace?", sent)
	assert.Equal(t, "Result: Grace is unmerited favor.", view.Text)

	kind, text, visible := page.Message()
	assert.Equal(t, KindSuccess, kind)
	assert.Equal(t, "Result: Grace is unmerited favor.", text)
	assert.True(t, visible)

	panels := page.Panels()
	require.Len(t, panels, 2)
	assert.Equal(t, "Source 1", panels[0].Label)
	assert.Equal(t, "<p>Doc A</p>", panels[0].Content)
	assert.Equal(t, "Source 2", panels[1].Label)
	assert.Equal(t, "<p>Doc B</p>", panels[1].Content)
	assert.False(t, panels[0].Visible())
	assert.False(t, panels[1].Visible())

	assert.False(t, page.Disabled())
	assert.Equal(t, "", page.MemoryPage.Value(), "form is reset on success")
	assert.Equal(t, Idle, c.State())

	assert.Equal(t, []string{"hide", "disable", "read", "enable", "reset", "show:success", "clear"}, page.Calls())
}

func TestSubmitApplicationError(t *testing.T) {
	page := newRecordingPage("")
	c := newController(t, page, static(&QueryResult{Error: "prompt must not be empty"}, nil))

	_, err := c.Submit(context.Background())

	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "prompt must not be empty", appErr.Message)

	kind, text, _ := page.Message()
	assert.Equal(t, KindFailure, kind)
	assert.Equal(t, "Error: prompt must not be empty", text)
	assert.Empty(t, page.Panels())
	assert.False(t, page.Disabled())
	assert.NotContains(t, page.Calls(), "clear", "documents container untouched on application error")
}

func TestSubmitTransportError(t *testing.T) {
	page := newRecordingPage("What is grace?")
	c := newController(t, page, static(nil, errors.New("Failed to fetch")))

	view, err := c.Submit(context.Background())

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Error: Failed to fetch", view.Text)

	kind, text, visible := page.Message()
	assert.Equal(t, KindFailure, kind)
	assert.Equal(t, "Error: Failed to fetch", text)
	assert.True(t, visible)
	assert.False(t, page.Disabled())
	assert.Equal(t, "What is grace?", page.MemoryPage.Value(), "form fields unchanged on failure")
	assert.NotContains(t, page.Calls(), "reset")
	assert.Equal(t, Idle, c.State())
}

func TestSubmitNilResultIsTransportError(t *testing.T) {
	page := newRecordingPage("q")
	c := newController(t, page, static(nil, nil))

	_, err := c.Submit(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.EqualError(t, err, "empty response")
}

func TestSubmitEnablesExactlyOncePerCycle(t *testing.T) {
	outcomes := map[string]Querier{
		"success":     static(&QueryResult{Result: "r"}, nil),
		"application": static(&QueryResult{Error: "e"}, nil),
		"transport":   static(nil, errors.New("down")),
	}
	for name, q := range outcomes {
		t.Run(name, func(t *testing.T) {
			page := newRecordingPage("q")
			c := newController(t, page, q)
			_, _ = c.Submit(context.Background())

			var disables, enables int
			for _, call := range page.Calls() {
				switch call {
				case "disable":
					disables++
				case "enable":
					enables++
				}
			}
			assert.Equal(t, 1, disables)
			assert.Equal(t, 1, enables)
			assert.Equal(t, "disable", page.Calls()[1])
		})
	}
}

func TestSubmitClearsPreviousPanels(t *testing.T) {
	page := newRecordingPage("first")
	responses := []*QueryResult{
		{Result: "one", SourceDocuments: []string{"a", "b", "c"}},
		{Result: "two", SourceDocuments: []string{"d"}},
		{Result: "three"},
	}
	i := 0
	c := newController(t, page, QuerierFunc(func(context.Context, string) (*QueryResult, error) {
		r := responses[i]
		i++
		return r, nil
	}))

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Panels(), 3)
	page.Panels()[0].Toggle()

	page.SetPrompt("second")
	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	panels := page.Panels()
	require.Len(t, panels, 1)
	assert.Equal(t, "Source 1", panels[0].Label)
	assert.Equal(t, "d", panels[0].Content)
	assert.False(t, panels[0].Visible())

	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page.Panels())
}

func TestSubmitHidesPreviousMessage(t *testing.T) {
	page := newRecordingPage("q")
	page.Show(KindFailure, "Error: old")

	seen := make(chan bool, 1)
	c := newController(t, page, QuerierFunc(func(context.Context, string) (*QueryResult, error) {
		_, _, visible := page.Message()
		seen <- visible
		return &QueryResult{Result: "new"}, nil
	}))

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, <-seen, "message hidden while pending")

	kind, text, _ := page.Message()
	assert.Equal(t, KindSuccess, kind)
	assert.Equal(t, "Result: new", text)
}

func TestSubmitRejectsWhilePending(t *testing.T) {
	page := newRecordingPage("q")
	started := make(chan struct{})
	release := make(chan struct{})
	c := newController(t, page, QuerierFunc(func(context.Context, string) (*QueryResult, error) {
		close(started)
		<-release
		return &QueryResult{Result: "done"}, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-started

	assert.Equal(t, Pending, c.State())
	assert.True(t, page.Disabled())
	callsBefore := len(page.Calls())

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionPending)
	assert.Len(t, page.Calls(), callsBefore, "rejected submission touches no element")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, c.State())
	assert.False(t, page.Disabled())
}

func TestSubmitHonoursContext(t *testing.T) {
	page := newRecordingPage("q")
	c := newController(t, page, QuerierFunc(func(ctx context.Context, _ string) (*QueryResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Submit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, page.Disabled())
}

func TestNewRequiresElements(t *testing.T) {
	page := NewMemoryPage("")
	el := page.Elements()
	el.Documents = nil

	_, err := New(el, static(nil, nil))
	assert.ErrorIs(t, err, ErrMissingElement)

	_, err = New(page.Elements(), nil)
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "pending", Pending.String())
}
