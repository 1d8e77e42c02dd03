// Package scheduler runs deferred work in rounds.
//
// A round is the batch of tasks produced by one call to Enqueue. Rounds are
// drained first-in first-out by a single worker goroutine, and a round only
// starts after the previous one has finished. This gives the breadth-first
// guarantee the hub depends on: every task of a round begins before any task
// of a later round, including rounds enqueued by the tasks themselves.
//
// Within a round tasks run one after the other by default. WithConcurrency
// allows up to n tasks of the same round to run at once.
//
// A panicking task is recovered and logged; it never stops the worker or the
// other tasks of its round.
//
//	q, err := scheduler.New(scheduler.WithConcurrency(4))
//	if err != nil {
//	    return err
//	}
//	defer q.Close(ctx)
//
//	q.Enqueue(taskA, taskB)
//	if err := q.Flush(ctx); err != nil {
//	    return err
//	}
package scheduler
