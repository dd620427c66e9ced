package models

// Mutation actions that can be queued while offline.
const (
	MutationAdd    = "add"
	MutationUpdate = "update"
)

// MutationPayload carries the fields of a queued create/update. For an add
// the synthetic offline id, title, image, section, line and page are set;
// for an update only id, title and the changed asset URIs.
type MutationPayload struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	ImageURI string `json:"imageUri,omitempty"`
	AudioURI string `json:"audioUri,omitempty"`
	Section  string `json:"section,omitempty"`
	Line     int    `json:"line,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// PendingMutation is one queued offline operation. Ordering is implicit:
// replay happens strictly in enqueue order.
type PendingMutation struct {
	Action  string          `json:"action"`
	Payload MutationPayload `json:"payload"`
}
