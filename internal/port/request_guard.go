package port

import "context"

type RequestGuard interface {
	// Acquire sets a key for idempotency check, returns false if already taken
	// so replays of the same intent never double-debit.
	Acquire(ctx context.Context, key string) (bool, error)

	// Release frees a key claimed by Acquire. Called when the guarded
	// operation fails without committing, so a corrected resubmission of the
	// same request is not mistaken for a replay.
	Release(ctx context.Context, key string) error
}
