package provider

import "fmt"

// Kind classifies API call failures so the chat loop can branch on
// them. All kinds are non-fatal: the in-progress turn is abandoned
// and the loop continues.
type Kind int

const (
	KindTransport Kind = iota
	KindHTTPStatus
	KindMalformedResponse
	KindEmptyChoices
)

// Error is a failed exchange with one provider.
type Error struct {
	Provider string
	Kind     Kind
	Status   int    // set for KindHTTPStatus
	Body     string // verbatim response body for KindHTTPStatus
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("API error from %s: %d - %s", e.Provider, e.Status, e.Body)
	case KindMalformedResponse:
		return fmt.Sprintf("failed to parse response from %s: %v", e.Provider, e.Err)
	case KindEmptyChoices:
		return fmt.Sprintf("no choices returned from %s", e.Provider)
	default:
		return fmt.Sprintf("request to %s failed: %v", e.Provider, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }
