// Package integration orchestrates batch lifecycle transitions and keeps
// local records consistent with QMIB.
package integration

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/elinasafina23/EBR/batch"
	"github.com/elinasafina23/EBR/errors"
	"github.com/elinasafina23/EBR/logger"
	"github.com/elinasafina23/EBR/qmib"
	"github.com/elinasafina23/EBR/storage"
)

// Remote is the QMIB surface the service depends on. *qmib.Client satisfies
// it; tests substitute fakes.
type Remote interface {
	FetchEquipmentState(ctx context.Context, equipmentID string) (*batch.EquipmentState, error)
	PublishBatchRecord(ctx context.Context, payload map[string]any) (map[string]any, error)
	FetchBatchTemplate(ctx context.Context, templateID string) (map[string]any, error)
	AcknowledgeEvent(ctx context.Context, eventID string, acknowledgement map[string]any) (map[string]any, error)
}

var _ Remote = (*qmib.Client)(nil)

// Service owns the batch status state machine and its remote side effects
type Service struct {
	store   *storage.BatchStore
	remote  Remote
	machine *batch.Machine
	logger  *zap.SugaredLogger
}

// NewService creates the lifecycle orchestrator
func NewService(store *storage.BatchStore, remote Remote, machine *batch.Machine, log *zap.SugaredLogger) *Service {
	if machine == nil {
		machine = batch.NewMachine()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{store: store, remote: remote, machine: machine, logger: log}
}

// UpdateBatchStatus applies a status transition to a local record and, when
// the target status requires it, publishes the record to QMIB.
//
// The local write strictly precedes the remote publish. A publish failure
// propagates to the caller but the committed local transition is not rolled
// back; this write-then-notify gap is accepted by design.
func (s *Service) UpdateBatchStatus(ctx context.Context, batchID string, status batch.Status) (*batch.Record, error) {
	record, err := s.store.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	effect, err := s.machine.Transition(record.Status, status)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC()
	record, err = s.store.UpdateStatus(ctx, batchID, status, timestamp)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Batch status updated",
		logger.FieldBatchID, batchID,
		logger.FieldStatus, status)

	if effect.PublishRemote {
		if _, err := s.PublishBatchCompletion(ctx, batchID); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// PublishBatchCompletion sends a completed batch record to QMIB for
// archival. The record is re-fetched first: a concurrent transition may have
// overwritten the status since the caller's write, and only completed
// records may be published.
func (s *Service) PublishBatchCompletion(ctx context.Context, batchID string) (map[string]any, error) {
	record, err := s.store.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if record.Status != batch.StatusCompleted {
		return nil, errors.NewInvariantf(
			"only completed batch records can be published to QMIB, batch %s has status %s",
			batchID, record.Status)
	}

	payload, err := recordPayload(record)
	if err != nil {
		return nil, err
	}

	response, err := s.remote.PublishBatchRecord(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Batch record published to QMIB",
		logger.FieldBatchID, batchID,
		logger.FieldRecipeID, record.RecipeID)

	return response, nil
}

// SynchronizeBatchFromTemplate fetches a template from QMIB and creates a
// local planned batch record seeded from it.
func (s *Service) SynchronizeBatchFromTemplate(ctx context.Context, templateID, batchID string) (*batch.Record, error) {
	template, err := s.remote.FetchBatchTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	record := batch.RecordFromTemplate(template, batchID)
	if err := s.store.Upsert(ctx, &record); err != nil {
		return nil, err
	}

	s.logger.Infow("Batch record created from template",
		logger.FieldBatchID, batchID,
		logger.FieldTemplateID, templateID,
		logger.FieldRecipeID, record.RecipeID)

	return &record, nil
}

// AcknowledgeEvent relays an event acknowledgement to QMIB. No local state
// changes; the remote response passes through to the caller.
func (s *Service) AcknowledgeEvent(ctx context.Context, ack batch.EventAcknowledgement) (map[string]any, error) {
	if ack.AcknowledgedAt.IsZero() {
		ack.AcknowledgedAt = time.Now().UTC()
	}

	payload, err := toPayload(ack)
	if err != nil {
		return nil, err
	}

	response, err := s.remote.AcknowledgeEvent(ctx, ack.EventID, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Event acknowledged in QMIB",
		logger.FieldEventID, ack.EventID,
		"acknowledged_by", ack.AcknowledgedBy)

	return response, nil
}

// EquipmentSnapshot fetches the live state of a single equipment item
func (s *Service) EquipmentSnapshot(ctx context.Context, equipmentID string) (*batch.EquipmentState, error) {
	return s.remote.FetchEquipmentState(ctx, equipmentID)
}

// recordPayload builds the QMIB publish payload from the full record,
// including the equipment list.
func recordPayload(record *batch.Record) (map[string]any, error) {
	return toPayload(record)
}

func toPayload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode payload")
	}
	return payload, nil
}
