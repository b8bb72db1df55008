package worker

import (
	"encoding/json"
	"fmt"

	"github.com/geostrata/jobfabric/internal/envelope"
)

// marshalResult encodes a JobResult for publication on the notification
// channel, using the same JSON codec as the request envelope per spec §9's
// "Opaque result blob" design note.
func marshalResult(result envelope.JobResult) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal job result: %w", err)
	}
	return data, nil
}
