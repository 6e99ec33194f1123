package main

import (
	"context"
	"time"

	"stackwise/internal/review/service"
	dErrors "stackwise/pkg/domain-errors"
)

const defaultReviewTxTimeout = 5 * time.Second

// reviewTx bounds review transactions with a deadline and refuses to begin
// one on a cancelled context.
type reviewTx struct {
	runner  service.TxRunner
	timeout time.Duration
}

func newReviewTx(runner service.TxRunner) *reviewTx {
	return &reviewTx{runner: runner}
}

func (t *reviewTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultReviewTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return t.runner.RunInTx(ctx, fn)
}
