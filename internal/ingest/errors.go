package ingest

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a refresh is requested while one is already
// running. The pipeline is single-flight by design: a full reload clears the
// graph.
var ErrBusy = errors.New("ingestion already in progress")

// BatchError reports an aborted paginated fetch: too many pages failed for
// the batch to be trusted.
type BatchError struct {
	Failed int
	Total  int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf(
		"aborted paginated fetch: %d of %d pages failed (threshold %.0f%%)",
		e.Failed, e.Total, pageFailureThreshold*100,
	)
}
