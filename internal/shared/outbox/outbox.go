package outbox

// Row status values shared by the persistence adapters and the relay.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)
