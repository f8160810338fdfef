package types

// ModelDescriptor is the identifying record of one servable model.
type ModelDescriptor struct {
	ID   string `json:"model_id" msgpack:"model_id"`
	Type string `json:"model_type" msgpack:"model_type"`
}

// Valid reports whether both fields are set. Descriptors failing this check
// are dropped on ingest.
func (m ModelDescriptor) Valid() bool {
	return m.ID != "" && m.Type != ""
}

// JobKind selects the channel sizing and the engine entry point for a job.
type JobKind string

const (
	JobKindList     JobKind = "list"
	JobKindGenerate JobKind = "generate"
)

// StreamState is the lifecycle of a streamed generation call.
type StreamState string

const (
	StreamRequested  StreamState = "requested"
	StreamDispatched StreamState = "dispatched"
	StreamStreaming  StreamState = "streaming"
	StreamCompleted  StreamState = "completed"
	StreamCancelled  StreamState = "cancelled"
	StreamFailed     StreamState = "failed"
)
