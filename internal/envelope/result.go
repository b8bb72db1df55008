package envelope

// JobResult is what a JobExecutor returns for a successfully processed job:
// raw output bytes plus the MIME type describing them, grounded on
// JobResult in original_source/interface/job.py.
type JobResult struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// Content-type constants for the deterministic per-kind mapping spec §4.4
// requires: GetMap and Legend render images, GetFeatureInfo returns JSON,
// GetFeature's encoding is implementation-defined (original_source leaves
// QslGetFeatureJob's output format to the runner; ContentTypeFeatureDefault
// names the default this module's reference executor uses).
const (
	ContentTypeImagePNG       = "image/png"
	ContentTypeJSON           = "application/json"
	ContentTypeFeatureDefault = "application/octet-stream"
)

// DefaultContentType reports the content type a conforming JobExecutor
// should use for kind absent an explicit FormatOptions override.
func DefaultContentType(kind Kind) (string, bool) {
	switch kind {
	case KindGetMap, KindLegend:
		return ContentTypeImagePNG, true
	case KindGetFeatureInfo:
		return ContentTypeJSON, true
	case KindGetFeature:
		return ContentTypeFeatureDefault, true
	default:
		return "", false
	}
}
