package domain

import "time"

// Record is a single upstream row tracked by its update time.
type Record struct {
	ID        int64     `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MaxUpdatedAt returns the latest UpdatedAt among records.
// ok is false when records is empty.
func MaxUpdatedAt(records []Record) (latest time.Time, ok bool) {
	for i, r := range records {
		if i == 0 || r.UpdatedAt.After(latest) {
			latest = r.UpdatedAt
		}
	}
	return latest, len(records) > 0
}
