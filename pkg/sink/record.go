package sink

import (
	"time"
)

// Record is a stored element-set text for one list.
type Record struct {
	// ListName is the satellite list the record belongs to
	ListName string `json:"list_name"`

	// Data is the newline-normalized service response
	Data []byte `json:"data"`

	// FetchedAt is when the record was written
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how long ago the record was fetched.
func (r *Record) Age() time.Duration {
	return time.Since(r.FetchedAt)
}

// Lines returns the number of newline-terminated lines in Data.
func (r *Record) Lines() int {
	n := 0
	for _, b := range r.Data {
		if b == '\n' {
			n++
		}
	}
	return n
}
