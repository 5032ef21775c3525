// Package threadpool is a self-tuning worker pool. Submitted tasks are
// buffered on a bounded queue and executed by a cohort of workers that the
// pool grows or shrinks on its own, following queue depth and execution
// time trends.
//
// Get the process-wide pool with GetPool(), or build a private one:
//
//	pool := threadpool.New(threadpool.DefaultConfig())
//	handle, _ := pool.Submit(func() (interface{}, error) {
//		return doWork()
//	})
//	result, err := handle.Result(time.Second)
package threadpool
