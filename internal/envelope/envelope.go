// Package envelope defines the wire format exchanged between the dispatcher
// client and the worker loop: a job wrapped in a minimal tagged-union
// envelope, plus the per-kind payload types and their decode-time
// validation.
//
// Called by: internal/dispatcher (encode on submit), internal/worker (probe
// + decode on pop)
// Calls: encoding/json, github.com/google/uuid
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies which of the four job payloads an Envelope carries.
type Kind string

const (
	KindGetMap         Kind = "GetMap"
	KindGetFeatureInfo Kind = "GetFeatureInfo"
	KindGetFeature     Kind = "GetFeature"
	KindLegend         Kind = "Legend"
)

func (k Kind) valid() bool {
	switch k {
	case KindGetMap, KindGetFeatureInfo, KindGetFeature, KindLegend:
		return true
	default:
		return false
	}
}

// Envelope is the wire format pushed onto the job queue: an id the
// dispatcher correlates against its per-job status record, a Kind
// discriminator, and the job payload itself.
//
// The JSON field order and the use of MarshalIndent (see Encode) are
// deliberate: the worker's pop loop pre-dispatches on the literal substring
// `"type": "<Kind>"` in the raw bytes before paying for a full Unmarshal,
// matching original_source/worker/redis.py's `f'"type": "{cls}"' in raw`
// check.
type Envelope struct {
	ID   string          `json:"id"`
	Type Kind            `json:"type"`
	Job  json.RawMessage `json:"job"`
}

// NewEnvelope marshals job and wraps it in an Envelope with a freshly
// generated id. job must be one of GetMapJob, GetFeatureInfoJob,
// GetFeatureJob or LegendJob.
func NewEnvelope(kind Kind, job interface{}) (*Envelope, error) {
	if !kind.valid() {
		return nil, newUnsupportedKind(string(kind))
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}
	return &Envelope{
		ID:   uuid.New().String(),
		Type: kind,
		Job:  payload,
	}, nil
}

// Encode serializes the envelope for transport on the broker queue.
// Indentation is not cosmetic: json.MarshalIndent inserts a space after
// each key's colon, which is what makes the `"type": "<Kind>"` textual
// probe (see ProbeKind) a substring of the encoded bytes. Compact
// json.Marshal would produce `"type":"<Kind>"` with no space and break the
// probe contract.
func (e *Envelope) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// ProbeKind performs the cheap textual pre-dispatch described in spec §4.3:
// it reports which Kind's literal marker appears in raw, without parsing
// JSON. Callers still must call Decode to validate the envelope; ProbeKind
// exists purely so the worker can route to the right decode path without
// unmarshaling twice.
func ProbeKind(raw []byte) (Kind, bool) {
	for _, k := range []Kind{KindGetMap, KindGetFeatureInfo, KindGetFeature, KindLegend} {
		if containsTypeMarker(raw, k) {
			return k, true
		}
	}
	return "", false
}

func containsTypeMarker(raw []byte, k Kind) bool {
	marker := []byte(`"type": "` + string(k) + `"`)
	return bytes.Contains(raw, marker)
}

// Decode fully parses raw into an Envelope and validates both the envelope
// shape and the embedded job payload. It returns a *DecodeError wrapping
// ErrMalformedEnvelope, ErrMissingRequiredField or ErrUnsupportedJobKind on
// failure.
// On any failure other than malformed JSON, the returned *Envelope is
// still non-nil with whatever ID/Type were parsed, so a caller that needs
// to transition a job to failed (spec §4.3 step c: "if its id is
// parseable") can still do so.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, newMalformed(err.Error())
	}
	if env.ID == "" {
		return &env, newMissingField("id")
	}
	if !env.Type.valid() {
		return &env, newUnsupportedKind(string(env.Type))
	}
	if len(env.Job) == 0 {
		return &env, newMissingField("job")
	}
	if _, err := env.DecodeJob(); err != nil {
		return &env, err
	}
	return &env, nil
}

// DecodeJob unmarshals and validates the envelope's Job payload according
// to its Type, returning one of *GetMapJob, *GetFeatureInfoJob,
// *GetFeatureJob or *LegendJob.
func (e *Envelope) DecodeJob() (interface{}, error) {
	switch e.Type {
	case KindGetMap:
		var job GetMapJob
		if err := json.Unmarshal(e.Job, &job); err != nil {
			return nil, newMalformed(err.Error())
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return &job, nil
	case KindGetFeatureInfo:
		var job GetFeatureInfoJob
		if err := json.Unmarshal(e.Job, &job); err != nil {
			return nil, newMalformed(err.Error())
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return &job, nil
	case KindGetFeature:
		var job GetFeatureJob
		if err := json.Unmarshal(e.Job, &job); err != nil {
			return nil, newMalformed(err.Error())
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return &job, nil
	case KindLegend:
		var job LegendJob
		if err := json.Unmarshal(e.Job, &job); err != nil {
			return nil, newMalformed(err.Error())
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return &job, nil
	default:
		return nil, newUnsupportedKind(string(e.Type))
	}
}
