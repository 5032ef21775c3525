package threadpool

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	globalPool *Pool
	globalMu   sync.Mutex
)

// GetPool returns the process-wide pool, constructing it on first use. The
// optional config is consulted only at construction; without one the
// THREAD_POOL_* environment is loaded. The constructed pool logs through the
// logrus standard logger and, when monitoring is enabled, publishes
// thread_pool_* series on the default Prometheus registerer.
func GetPool(conf ...Config) *Pool {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool != nil {
		return globalPool
	}

	c := ConfigFromEnv()
	if len(conf) > 0 {
		c = conf[0]
	}

	opts := []Option{WithLogger(logrus.StandardLogger())}
	if c.MonitoringEnabled {
		sink, err := NewPrometheusSink(nil)
		if err != nil {
			logrus.Errorf("threadpool: prometheus sink unavailable: %v", err)
		} else {
			opts = append(opts, WithMetricsSink(sink))
		}
	}

	globalPool = New(c, opts...)
	return globalPool
}

// ShutdownPool shuts down the process-wide pool and clears it, so the next
// GetPool constructs a fresh one. It is a no-op when no pool exists. The
// wait and timeout arguments behave as in Pool.Shutdown.
func ShutdownPool(wait bool, timeout time.Duration) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool == nil {
		return nil
	}
	err := globalPool.Shutdown(wait, timeout)
	globalPool = nil
	return err
}
