/*
Package events provides an in-memory event broker for gridcore's pub/sub
messaging.

The events package implements a lightweight event bus for broadcasting
scheduler lifecycle events to interested subscribers: task enqueue/completion,
worker faults, and respawn/escalation decisions. It supports non-blocking,
fan-out delivery over buffered channels, decoupling the dispatcher's hot path
from whatever observes it (logging, metrics, an admin API).

# Architecture

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Event Broker                   │          │
	│  │  - In-memory message bus                    │          │
	│  │  - Non-blocking publish                     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Event Distribution                 │          │
	│  │  Publisher → Event Channel (buffer: 100)    │          │
	│  │       ↓                                      │          │
	│  │  Broadcast Loop                              │          │
	│  │       ↓                                      │          │
	│  │  Subscriber Channels (buffer: 50 each)      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Event Types                       │          │
	│  │    task.enqueued, task.completed,           │          │
	│  │    task.faulted, worker.faulted,            │          │
	│  │    worker.respawned, worker.escalated,      │          │
	│  │    scheduler.started, scheduler.stopped     │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Event Broker:
  - Central message bus for event distribution
  - Manages subscriber lifecycle
  - Non-blocking publish (buffered channel)
  - Graceful shutdown via stop channel

Event:
  - ID, Type, Timestamp, Message, Metadata (key-value pairs)

Subscriber:
  - Buffered channel (50 events) returned by broker.Subscribe()
  - Closed via broker.Unsubscribe()

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("%s: %s\n", event.Type, event.Message)
		}
	}()

	broker.Publish(&events.Event{
		Type:    events.EventWorkerRespawned,
		Message: "partition worker 3 respawned after fatal panic",
		Metadata: map[string]string{
			"partition_id": "3",
		},
	})

# Design Patterns

Non-blocking publish, fan-out to all subscribers, fire-and-forget delivery -
a slow or absent subscriber never blocks the dispatcher. Suitable for
monitoring and logging, not for anything that needs guaranteed delivery.

# Integration Points

  - pkg/scheduler: publishes scheduler start/stop and worker escalation events
  - pkg/api: a future admin surface could stream events to clients
  - pkg/metrics: a subscriber can count events into counters

# Limitations

In-memory only, no persistence or replay, no delivery guarantee, no
topic-based filtering - subscribers receive every event and filter by Type.

# See Also

  - pkg/scheduler for the dispatcher that publishes these events
*/
package events
