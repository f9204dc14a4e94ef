package dispatcher

import (
	"time"

	"github.com/google/uuid"
)

// Job is a single pid queued for classification, mirroring the original
// classification_queue's plain pid entries (spec.md §3), extended with a
// correlation id so a pid's whole classify_process run can be traced
// through structured logs.
type Job struct {
	PID           uint32
	EnqueuedAt    time.Time
	CorrelationID uuid.UUID
}
