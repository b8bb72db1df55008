// Package executor defines the JobExecutor collaborator boundary described
// in spec §4.4: the worker loop depends on a single polymorphic operation,
// process(job) -> JobResult, and treats everything behind it as opaque. A
// real QGIS-backed implementation is deliberately out of scope for this
// module (spec §1's "Deliberately out of scope"); this package ships only
// the interface and the fakes tests need.
//
// The narrow-interface-at-a-package-boundary shape mirrors how a runner
// drives an arbitrary implementation without knowing its concrete type.
package executor

import (
	"context"
	"fmt"

	"github.com/geostrata/jobfabric/internal/envelope"
)

// JobExecutor turns a decoded job into a JobResult. Implementations must
// be safe to call sequentially on the same instance (spec §4.4); no
// concurrent-call requirement is placed on them since internal/worker
// invokes process synchronously from its single loop.
type JobExecutor interface {
	// Process dispatches on the concrete type of job (one of
	// *envelope.GetMapJob, *envelope.GetFeatureInfoJob,
	// *envelope.GetFeatureJob, *envelope.LegendJob) and returns the
	// rendered/queried result. A returned error's Error() string is
	// recorded verbatim in the job's broker record.
	Process(ctx context.Context, kind envelope.Kind, job interface{}) (envelope.JobResult, error)
}

// Null is a JobExecutor that always fails, useful as a default collaborator
// when no real rendering backend is wired (e.g. a worker binary started
// only to exercise protocol plumbing).
type Null struct{}

func (Null) Process(ctx context.Context, kind envelope.Kind, job interface{}) (envelope.JobResult, error) {
	return envelope.JobResult{}, fmt.Errorf("no JobExecutor configured for job kind %s", kind)
}

// Fake is a JobExecutor for tests: it returns a fixed payload per kind
// unless Err is set, in which case every call fails with Err.
type Fake struct {
	Err     error
	Results map[envelope.Kind]envelope.JobResult
}

// NewFake builds a Fake with the spec §4.4 default content-type mapping
// and a small placeholder payload for every kind.
func NewFake() *Fake {
	results := make(map[envelope.Kind]envelope.JobResult)
	for _, kind := range []envelope.Kind{envelope.KindGetMap, envelope.KindGetFeatureInfo, envelope.KindGetFeature, envelope.KindLegend} {
		contentType, _ := envelope.DefaultContentType(kind)
		results[kind] = envelope.JobResult{Data: []byte("fake-" + string(kind)), ContentType: contentType}
	}
	return &Fake{Results: results}
}

func (f *Fake) Process(ctx context.Context, kind envelope.Kind, job interface{}) (envelope.JobResult, error) {
	if f.Err != nil {
		return envelope.JobResult{}, f.Err
	}
	result, ok := f.Results[kind]
	if !ok {
		return envelope.JobResult{}, fmt.Errorf("fake executor has no result configured for kind %s", kind)
	}
	return result, nil
}
