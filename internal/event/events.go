// Package event is the in-process notification bus that decouples request
// intake from suggestion generation.
//
// Events form a closed set: every variant is declared in this file and
// carries its own typed payload. Subscribers register against a Kind and
// receive the concrete value.
package event

import "github.com/google/uuid"

// Kind identifies an event variant.
type Kind string

const (
	KindRequestCreated   Kind = "RequestCreated"
	KindSuggestionsReady Kind = "SuggestionsReady"
)

// Event is implemented only by the variants below.
type Event interface {
	Kind() Kind
	isEvent()
}

// RequestCreated is published once a purchase request has been stored.
type RequestCreated struct {
	RequestID uuid.UUID
}

func (RequestCreated) Kind() Kind { return KindRequestCreated }
func (RequestCreated) isEvent()   {}

// SuggestionsReady is published after a pipeline run persisted the ranking for a request.
type SuggestionsReady struct {
	RequestID uuid.UUID
	Count     int
}

func (SuggestionsReady) Kind() Kind { return KindSuggestionsReady }
func (SuggestionsReady) isEvent()   {}
