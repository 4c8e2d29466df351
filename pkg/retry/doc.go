// Package retry resubmits tasks that a pool or worker rejected because the
// target queue was full.
//
// Admission never blocks, so backpressure is the caller's concern. Submit
// turns a rejection into a bounded wait using one of the policies:
//
//   - FixedDelay: the same delay between attempts
//   - ExponentialBackoff: delay grows by a multiplier up to a cap
//
// Both support jitter. Rejections other than a full queue (no strategy, no
// workers, nil task, stopped worker) are not retried.
//
// Basic usage example:
//
//	policy := retry.NewExponentialBackoff(5, time.Millisecond).WithMaxDelay(50 * time.Millisecond)
//	admission, err := retry.Submit(ctx, p, types.CategoryIO, t, policy, nil)
//	if err != nil {
//		log.Printf("task %s not admitted: %v", admission.Task().ID(), err)
//	}
package retry
