package metrics

import (
	"strconv"
	"time"
)

// StatsSource is implemented by the scheduler dispatcher. It is defined here,
// not imported from pkg/scheduler, so this package never depends on the
// dispatcher's concrete type - only the shape of stats it can report.
type StatsSource interface {
	PartitionQueueDepths() map[int][2]int
	GenericQueueDepth() [2]int
	ResponseQueueDepth() int
	WorkersAlive() (partition, generic int)
}

// Collector polls a dispatcher's read-only stats on a fixed interval and
// updates the package's gauges, mirroring the manager-polling collector this
// package was adapted from.
type Collector struct {
	source StatsSource
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector for the given stats source.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics every 5 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.source == nil {
		return
	}

	for partitionID, depths := range c.source.PartitionQueueDepths() {
		id := strconv.Itoa(partitionID)
		QueueDepth.WithLabelValues("partition", id, "blocking").Set(float64(depths[0]))
		QueueDepth.WithLabelValues("partition", id, "priority").Set(float64(depths[1]))
	}

	genericDepths := c.source.GenericQueueDepth()
	QueueDepth.WithLabelValues("generic", "shared", "blocking").Set(float64(genericDepths[0]))
	QueueDepth.WithLabelValues("generic", "shared", "priority").Set(float64(genericDepths[1]))

	QueueDepth.WithLabelValues("response", "0", "blocking").Set(float64(c.source.ResponseQueueDepth()))

	partitionAlive, genericAlive := c.source.WorkersAlive()
	WorkersAlive.WithLabelValues("partition").Set(float64(partitionAlive))
	WorkersAlive.WithLabelValues("generic").Set(float64(genericAlive))
}
