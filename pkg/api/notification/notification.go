package notification

import (
	"github.com/ossf/content-triage/pkg/api/triage"
)

// TriageComplete is a struct representing the message sent to notify when
// the triage of an object is complete.
type TriageComplete struct {
	Key triage.Key `json:"key"`

	// DetectedType is the type label detected for the object.
	DetectedType string `json:"detected_type,omitempty"`

	// CompressionLikely is set when the object appears to be compressed or
	// encrypted, so downstream consumers can route it for unpacking.
	CompressionLikely bool `json:"compression_likely"`
}
