// Package extract runs checkpointed incremental extraction cycles: load the
// watermark, pull records updated strictly after it, hand them to a sink,
// then advance the watermark to the newest update seen.
package extract

import (
	"time"

	"github.com/vietddude/watermark/internal/core/domain"
)

// ExtractNew returns the records updated strictly after checkpoint, in
// input order. A nil checkpoint selects every record.
func ExtractNew(records []domain.Record, checkpoint *time.Time) []domain.Record {
	if checkpoint == nil {
		return records
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.UpdatedAt.After(*checkpoint) {
			out = append(out, r)
		}
	}
	return out
}
