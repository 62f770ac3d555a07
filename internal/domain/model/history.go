package model

import "time"

// HistoryEntry records one completed generation. Image bytes are not kept;
// only the attributes needed to reproduce or audit the run.
type HistoryEntry struct {
	ID         string
	RequestID  string
	Prompt     string
	Model      string
	Sampler    string
	Seed       string
	Width      int
	Height     int
	Steps      int
	WorkerID   string
	WorkerName string
	Censored   bool
	Kudos      float64
	CreatedAt  time.Time
}
