package dispatcher

import (
	"encoding/json"
	"fmt"

	"github.com/geostrata/jobfabric/internal/envelope"
)

// decodeResult parses the notification payload published by a worker on
// job success. Per spec §9's design note ("Opaque result blob"), the
// payload uses the same JSON codec as the request envelope rather than a
// language-native serialization, so producer and consumer need not share a
// runtime: it is simply an envelope.JobResult marshaled as JSON.
func decodeResult(payload []byte, recordContentType string) (*envelope.JobResult, error) {
	var result envelope.JobResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal job result payload: %w", err)
	}
	if result.ContentType == "" {
		result.ContentType = recordContentType
	}
	return &result, nil
}
