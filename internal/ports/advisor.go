package ports

import "context"

// Advisor sends a message to a language model and returns its text reply.
type Advisor interface {
	AdviseAbout(ctx context.Context, msg string) (string, error)
}
