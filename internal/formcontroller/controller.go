// Package formcontroller drives the query form: it serializes the prompt,
// performs one request per submission, and renders the answer and its
// source-document panels onto the element handles it was constructed with.
package formcontroller

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// ErrSubmissionPending is returned when Submit is called while a previous
// submission is still awaiting its response. Nothing is touched.
var ErrSubmissionPending = errors.New("submission already pending")

var ErrMissingElement = errors.New("form element handle is nil")

// Element handles. Implementations render to a DOM, a terminal or memory.
type (
	Form interface {
		Reset()
	}
	SubmitControl interface {
		SetDisabled(disabled bool)
	}
	PromptField interface {
		Value() string
	}
	Message interface {
		Show(kind Kind, text string)
		Hide()
	}
	Container interface {
		Clear()
		Append(p *Panel)
	}
)

type Elements struct {
	Form      Form
	Submit    SubmitControl
	Prompt    PromptField
	Message   Message
	Documents Container
}

func (e Elements) validate() error {
	if e.Form == nil || e.Submit == nil || e.Prompt == nil || e.Message == nil || e.Documents == nil {
		return ErrMissingElement
	}
	return nil
}

// Querier performs the outbound call. A returned error is a transport
// failure; application errors travel in QueryResult.Error.
type Querier interface {
	Query(ctx context.Context, prompt string) (*QueryResult, error)
}

type QuerierFunc func(ctx context.Context, prompt string) (*QueryResult, error)

func (f QuerierFunc) Query(ctx context.Context, prompt string) (*QueryResult, error) {
	return f(ctx, prompt)
}

type State int32

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

type Controller struct {
	el      Elements
	querier Querier
	state   atomic.Int32
}

func New(el Elements, q Querier) (*Controller, error) {
	if err := el.validate(); err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errors.New("querier is nil")
	}
	return &Controller{el: el, querier: q}, nil
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Submit runs one submission cycle and returns the rendered view. The error
// is nil on success, *ApplicationError or *TransportError when a failure
// message was rendered, and ErrSubmissionPending when rejected. The call
// is bounded only by ctx.
func (c *Controller) Submit(ctx context.Context) (View, error) {
	if !c.state.CompareAndSwap(int32(Idle), int32(Pending)) {
		return View{}, ErrSubmissionPending
	}
	defer c.state.Store(int32(Idle))

	c.el.Message.Hide()
	c.el.Submit.SetDisabled(true)
	prompt := c.el.Prompt.Value()

	res, err := c.querier.Query(ctx, prompt)
	if err == nil && res == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		c.el.Submit.SetDisabled(false)

		terr := asTransportError(err)
		view := RenderFailure(terr)
		c.el.Message.Show(view.Kind, view.Text)
		log.Debug().Err(err).Msg("Query transport failure")
		return view, terr
	}

	c.el.Submit.SetDisabled(false)
	c.el.Form.Reset()

	view := Render(*res)
	c.el.Message.Show(view.Kind, view.Text)
	if res.Error != "" {
		return view, &ApplicationError{Message: res.Error}
	}

	c.el.Documents.Clear()
	for _, d := range view.Panels {
		c.el.Documents.Append(NewPanel(d))
	}
	return view, nil
}
