package threadpool

import "time"

// monitor is the autoscaling loop. Every tick it refreshes the queue gauge,
// samples the pool, asks the policy for a desired size and resizes when the
// answer differs, keeping at least scaleCooldown between size changes.
func (p *Pool) monitor() {
	p.log.Infof("pool [%s]: starting pool monitor", p.name)
	defer p.log.Infof("pool [%s]: pool monitor stopped", p.name)

	ticker := time.NewTicker(p.monitorInterval)
	defer ticker.Stop()

	lastScale := time.Now()
	for {
		select {
		case <-ticker.C:
			p.monitorTick(&lastScale)
		case <-p.stopChan:
			return
		}
	}
}

// monitorTick runs one scaling pass. A panic out of the policy is logged
// and survived, so one bad tick cannot kill the monitor.
func (p *Pool) monitorTick(lastScale *time.Time) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("pool [%s]: error in pool monitor: %v", p.name, r)
		}
	}()

	p.sink.SetQueueSize(p.queue.Size())

	if time.Since(*lastScale) < p.scaleCooldown {
		return
	}

	sample := p.loadSample()
	desired := p.policy.DesiredWorkers(sample)
	if desired == sample.ActiveWorkers {
		p.log.Debugf("pool [%s]: monitor: pool size remains stable: %d", p.name, sample.ActiveWorkers)
		return
	}

	if err := p.Resize(desired); err != nil {
		p.log.Errorf("pool [%s]: error in pool monitor: %v", p.name, err)
		return
	}
	// The cooldown restarts even when clamping made the resize a no-op.
	*lastScale = time.Now()
}

func (p *Pool) loadSample() LoadSample {
	return LoadSample{
		ActiveWorkers:  int(p.stats.activeWorkers.Load()),
		QueueDepth:     p.queue.Size(),
		AvgExecTime:    p.stats.window.average(),
		RecentExecTime: p.stats.window.recentAverage(),
		MinWorkers:     p.conf.MinWorkers,
		MaxWorkers:     p.conf.MaxWorkers,
	}
}
