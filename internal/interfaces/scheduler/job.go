package scheduler

import "context"

// Job is one unit of background work.
type Job interface {
	Execute(ctx context.Context) error
	Description() string
	UserID() string
}
