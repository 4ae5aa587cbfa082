package roster

import (
	"context"
	"time"
)

// Importer upserts decoded entries. The service layer implements it.
type Importer interface {
	Import(ctx context.Context, source string, entries []Entry) (*Result, error)
}

// EntryError reports why one entry was skipped.
type EntryError struct {
	Index   int    `json:"index"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// Result summarizes an import.
type Result struct {
	Source   string        `json:"source"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Errors   []EntryError  `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Imported is the number of entries written.
func (r *Result) Imported() int { return r.Created + r.Updated }
