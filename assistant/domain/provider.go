package domain

import "context"

// IntentRequester asks a hosted language model to interpret a user query and
// return a structured reply. Implementations must be safe for concurrent use.
type IntentRequester interface {
	RequestIntent(ctx context.Context, query string) (ModelReply, error)
}
