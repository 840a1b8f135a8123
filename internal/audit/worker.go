package audit

import "context"

// Worker consumes audit entries from a channel and persists them, keeping
// flag emission off the pipeline's hot path when the store is remote.
type Worker struct {
	store Store
	inbox <-chan Entry
}

func NewWorker(store Store, inbox <-chan Entry) *Worker {
	return &Worker{store: store, inbox: inbox}
}

// Run drains the inbox until the context is canceled or a store append
// fails. A failed append stops the worker; the caller decides whether to
// restart or abort the run.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-w.inbox:
			if err := w.store.Append(ctx, entry); err != nil {
				return err
			}
		}
	}
}
