package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cuemby/gridcore/pkg/scheduler"
)

// demoPayload is the JSON envelope packets carry in this reference binary.
// A real deployment replaces opHandler/respHandler with whatever wire
// format and business logic its operations actually need; the scheduler
// package itself is agnostic to both, per scheduler.OperationHandler's
// contract.
type demoPayload struct {
	PartitionID    int    `json:"partition_id"`
	CallID         uint64 `json:"call_id"`
	CallerAddress  string `json:"caller_address"`
	PartitionAware bool   `json:"partition_aware"`
	Urgent         bool   `json:"urgent"`
	ExecutorName   string `json:"executor_name,omitempty"`
	Action         string `json:"action"`
}

// jsonOperationHandler deserializes packets via encoding/json and
// executes operations by logging the action they carry. It stands in for
// the real business logic a production deployment would provide.
type jsonOperationHandler struct {
	logger zerolog.Logger
}

func newJSONOperationHandler(logger zerolog.Logger) *jsonOperationHandler {
	return &jsonOperationHandler{logger: logger}
}

func (h *jsonOperationHandler) Deserialize(pkt *scheduler.Packet) (*scheduler.Operation, error) {
	var p demoPayload
	if err := json.Unmarshal(pkt.Payload, &p); err != nil {
		return nil, fmt.Errorf("deserialize packet: %w", err)
	}
	return &scheduler.Operation{
		PartitionID:    p.PartitionID,
		CallerAddress:  p.CallerAddress,
		CallID:         p.CallID,
		ExecutorName:   p.ExecutorName,
		IsUrgent:       p.Urgent,
		PartitionAware: p.PartitionAware,
		Payload:        p.Action,
	}, nil
}

func (h *jsonOperationHandler) Process(ctx context.Context, op *scheduler.Operation) error {
	h.logger.Info().
		Int("partition_id", op.PartitionID).
		Uint64("call_id", op.CallID).
		Str("caller_address", op.CallerAddress).
		Interface("payload", op.Payload).
		Msg("operation processed")
	return nil
}

// jsonResponseHandler mirrors jsonOperationHandler for inbound response
// packets.
type jsonResponseHandler struct {
	logger zerolog.Logger
}

func newJSONResponseHandler(logger zerolog.Logger) *jsonResponseHandler {
	return &jsonResponseHandler{logger: logger}
}

func (h *jsonResponseHandler) Deserialize(pkt *scheduler.Packet) (*scheduler.Response, error) {
	var p demoPayload
	if err := json.Unmarshal(pkt.Payload, &p); err != nil {
		return nil, fmt.Errorf("deserialize response packet: %w", err)
	}
	return &scheduler.Response{CallID: p.CallID, Payload: p.Action}, nil
}

func (h *jsonResponseHandler) Process(ctx context.Context, resp *scheduler.Response) error {
	h.logger.Info().Uint64("call_id", resp.CallID).Interface("payload", resp.Payload).Msg("response processed")
	return nil
}
