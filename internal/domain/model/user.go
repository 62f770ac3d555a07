package model

// UserDetails describes the horde account behind the configured API key.
type UserDetails struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Kudos          float64 `json:"kudos"`
	RequestsFilled int64   `json:"request_fulfillments"`
	Trusted        bool    `json:"trusted"`
}

// ActiveModel is one entry of the service's model listing.
type ActiveModel struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Count       int    `json:"count"`
	Performance int    `json:"performance"`
	Queued      int    `json:"queued"`
	ETA         int    `json:"eta"`
}
