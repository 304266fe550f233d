package adapter

import (
	"context"
	"sync"

	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// TestAdapter is an in-memory Adapter for use in engine tests. It
// returns a canned response for each input text, falling back to a
// default response when no match is registered, and records every call
// it receives so tests can assert on call order and inputs.
type TestAdapter struct {
	mu sync.Mutex

	responses map[string]Response
	def       Response

	connected bool
	calls     []types.ItemInput
	sendErr   error
}

// NewTestAdapter returns a TestAdapter whose default response is an
// empty, non-matching text reply.
func NewTestAdapter() *TestAdapter {
	return &TestAdapter{
		responses: make(map[string]Response),
		def:       Response{Content: "", Format: FormatText},
	}
}

// SetResponse registers the response returned when an item's input text
// exactly matches text.
func (a *TestAdapter) SetResponse(text string, resp Response) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[text] = resp
}

// SetDefaultResponse sets the response returned for unmatched input.
func (a *TestAdapter) SetDefaultResponse(resp Response) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.def = resp
}

// SetSendError makes every subsequent Send call fail with err until
// cleared with SetSendError(nil).
func (a *TestAdapter) SetSendError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sendErr = err
}

// Calls returns every input passed to Send, in call order.
func (a *TestAdapter) Calls() []types.ItemInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.ItemInput, len(a.calls))
	copy(out, a.calls)
	return out
}

func (a *TestAdapter) Connect(ctx context.Context, config TargetConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = true
	return nil
}

func (a *TestAdapter) Send(ctx context.Context, input types.ItemInput) (Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, input)

	if a.sendErr != nil {
		return Response{}, a.sendErr
	}
	if resp, ok := a.responses[input.Text]; ok {
		return resp, nil
	}
	return a.def, nil
}

func (a *TestAdapter) Inspect(ctx context.Context) (InspectResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return InspectResult{Reachable: a.connected, ResponseFormat: FormatText}, nil
}

func (a *TestAdapter) Disconnect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = false
	return nil
}
