package timer

// AddTimeIncrementSec is the fixed amount the add-time operation appends.
const AddTimeIncrementSec = 60

// CreateTimerRequest is the input for creating a timer
type CreateTimerRequest struct {
	Label     string `json:"label"`
	LengthSec int64  `json:"length_sec"`
}

// InstantRequest carries a client-supplied clock reading for pause, resume
// and reset, in epoch milliseconds as read off the client's own clock. When
// omitted the server stamps the operation with its own clock instead.
type InstantRequest struct {
	InstantMs *int64 `json:"instant_ms,omitempty"`
}
