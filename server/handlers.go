package server

import (
	"net/http"

	"github.com/elinasafina23/EBR/batch"
	"github.com/elinasafina23/EBR/logger"
)

// HandleHealth responds with service liveness
func (s *EBRServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": s.cfg.Environment,
	})
}

// HandleBatches lists batch records (GET) or creates/replaces one (POST)
func (s *EBRServer) HandleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := s.store.List(r.Context())
		if err != nil {
			s.logger.Errorw("Failed to list batch records", logger.FieldError, err)
			writeServiceError(w, err)
			return
		}
		if records == nil {
			records = []*batch.Record{}
		}
		writeJSON(w, http.StatusOK, records)

	case http.MethodPost:
		var record batch.Record
		if err := readJSON(w, r, &record); err != nil {
			return
		}
		if record.BatchID == "" {
			writeError(w, http.StatusBadRequest, "batch_id is required")
			return
		}
		if !record.Status.Valid() {
			if record.Status == "" {
				record.Status = batch.StatusPlanned
			} else {
				writeError(w, http.StatusBadRequest, "unknown status "+string(record.Status))
				return
			}
		}
		if record.Data == nil {
			record.Data = batch.Data{}
		}
		if record.Equipment == nil {
			record.Equipment = []string{}
		}

		if err := s.store.Upsert(r.Context(), &record); err != nil {
			s.logger.Errorw("Failed to upsert batch record",
				logger.FieldBatchID, record.BatchID,
				logger.FieldError, err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &record)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleBatchStatus transitions a batch record's lifecycle status (PATCH).
// A completed transition additionally publishes the record to QMIB; publish
// failures surface here even though the local transition is committed.
func (s *EBRServer) HandleBatchStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPatch) {
		return
	}

	batchID := r.PathValue("id")
	if batchID == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}

	var body struct {
		Status batch.Status `json:"status"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}
	if !body.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+string(body.Status))
		return
	}

	record, err := s.service.UpdateBatchStatus(r.Context(), batchID, body.Status)
	if err != nil {
		s.logger.Errorw("Batch status transition failed",
			logger.FieldBatchID, batchID,
			logger.FieldStatus, body.Status,
			logger.FieldError, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// HandleFromTemplate creates a local batch record from a QMIB template (POST)
func (s *EBRServer) HandleFromTemplate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var body struct {
		TemplateID string `json:"template_id"`
		BatchID    string `json:"batch_id"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}
	if body.TemplateID == "" || body.BatchID == "" {
		writeError(w, http.StatusBadRequest, "template_id and batch_id are required")
		return
	}

	record, err := s.service.SynchronizeBatchFromTemplate(r.Context(), body.TemplateID, body.BatchID)
	if err != nil {
		s.logger.Errorw("Template synchronization failed",
			logger.FieldTemplateID, body.TemplateID,
			logger.FieldBatchID, body.BatchID,
			logger.FieldError, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// HandleAcknowledgeEvent relays an event acknowledgement to QMIB (POST)
func (s *EBRServer) HandleAcknowledgeEvent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var ack batch.EventAcknowledgement
	if err := readJSON(w, r, &ack); err != nil {
		return
	}
	if ack.EventID == "" || ack.AcknowledgedBy == "" {
		writeError(w, http.StatusBadRequest, "event_id and acknowledged_by are required")
		return
	}

	response, err := s.service.AcknowledgeEvent(r.Context(), ack)
	if err != nil {
		s.logger.Errorw("Event acknowledgement failed",
			logger.FieldEventID, ack.EventID,
			logger.FieldError, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleEquipmentState fetches the live state of an equipment item (GET)
func (s *EBRServer) HandleEquipmentState(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	equipmentID := r.PathValue("id")
	if equipmentID == "" {
		writeError(w, http.StatusBadRequest, "equipment id is required")
		return
	}

	state, err := s.service.EquipmentSnapshot(r.Context(), equipmentID)
	if err != nil {
		s.logger.Errorw("Equipment state fetch failed",
			logger.FieldEquipmentID, equipmentID,
			logger.FieldError, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}
