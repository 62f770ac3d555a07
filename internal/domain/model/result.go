package model

import "time"

// Generation is one entry of a completed job's generation list as reported by
// the service. IMG carries either a data URL or a download URL depending on
// how the worker uploaded it.
type Generation struct {
	ID         string `json:"id"`
	IMG        string `json:"img"`
	Seed       string `json:"seed"`
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	Model      string `json:"model"`
	Censored   bool   `json:"censored"`
}

// Result is the final presentable artifact of a completed job: the downloaded
// image bytes plus the attributes the server reported and the dimensions
// cached at submit time. One Result exists per completed job; only the first
// generation of a multi-image response is retained.
type Result struct {
	ID         string
	RequestID  string
	Width      int
	Height     int
	Image      []byte
	WorkerID   string
	WorkerName string
	Model      string
	Seed       string
	Censored   bool
	Kudos      float64
	CreatedAt  time.Time

	released bool
}

// Release frees the binary payload. Callers must release a Result before
// replacing it; releasing twice is a no-op.
func (r *Result) Release() {
	if r == nil || r.released {
		return
	}
	r.Image = nil
	r.released = true
}

// Released reports whether the binary payload has been freed.
func (r *Result) Released() bool {
	return r == nil || r.released
}
