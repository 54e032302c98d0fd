package types

// Event types delivered by GCP triggers.
const (
	EventTypePubSubPublished  = "google.cloud.pubsub.topic.v1.messagePublished"
	EventTypeStorageFinalized  = "google.cloud.storage.object.v1.finalized"
)

// PubSubMessage is the payload of a Pub/Sub event via Cloud Event.
type PubSubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

// StorageObjectData is the payload of a Cloud Storage object event.
type StorageObjectData struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        string `json:"size,omitempty"`
}
