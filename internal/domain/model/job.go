package model

import "time"

// JobInProgress is the tracking record for the single submitted generation
// request. At most one instance is persisted at a time.
type JobInProgress struct {
	RequestID   string    `json:"request_id"`
	Kudos       float64   `json:"kudos"`
	SubmittedAt time.Time `json:"submitted_at"`
	// FetchAttempts counts failed result downloads after the job reported
	// done; the poller gives up when it passes the configured cap.
	FetchAttempts int `json:"fetch_attempts"`
}

// JobMetadata caches the dimensions chosen at submit time. Later status
// responses do not repeat them, so they are stored alongside the job and
// re-read when the result is assembled.
type JobMetadata struct {
	RequestID string `json:"request_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// StatusCheck is one polling snapshot for an in-flight job.
// IsPossible=false is terminal failure; Done=true is terminal success.
type StatusCheck struct {
	Done       bool `json:"done"`
	Faulted    bool `json:"faulted"`
	IsPossible bool `json:"is_possible"`
	Finished   int  `json:"finished"`
	Processing int  `json:"processing"`
	Waiting    int  `json:"waiting"`
	QueuePos   int  `json:"queue_position"`
	WaitTime   int  `json:"wait_time"`
}
