package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostrata/jobfabric/internal/broker"
	"github.com/geostrata/jobfabric/internal/envelope"
)

func validGetMapJob() *envelope.GetMapJob {
	job := &envelope.GetMapJob{}
	job.RasterLayers = []envelope.Raster{{Name: "ortho", Source: envelope.RasterSource{GDAL: &envelope.GDALSource{}}}}
	job.ServiceParams = envelope.ServiceParams{
		AbstractWmsParams: envelope.AbstractWmsParams{CRS: "EPSG:4326", Width: 256, Height: 256},
		Layers:            "ortho",
		Format:            "image/png",
	}
	return job
}

// fakeWorker drains the queue in the background and drives every job it
// pops through the running -> terminal transition, standing in for
// internal/worker in these dispatcher-focused tests.
func fakeWorker(t *testing.T, b broker.Broker, fail bool) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			raw, err := b.Pop(ctx)
			if err != nil {
				return
			}
			env, err := envelope.Decode(raw)
			require.NoError(t, err)

			require.NoError(t, b.UpdateStatus(ctx, env.ID, broker.StatusRunning, "", ""))

			if fail {
				require.NoError(t, b.CompleteJob(ctx, env.ID, broker.StatusFailed, "", "boom", 0, []byte("failed")))
				continue
			}

			result := envelope.JobResult{Data: []byte("pngdata"), ContentType: envelope.ContentTypeImagePNG}
			payload, err := json.Marshal(result)
			require.NoError(t, err)
			require.NoError(t, b.CompleteJob(ctx, env.ID, broker.StatusSucceed, result.ContentType, "", 5*time.Millisecond, payload))
		}
	}()
	return cancel
}

func TestSubmitSuccess(t *testing.T) {
	b := broker.NewMemory()
	stop := fakeWorker(t, b, false)
	defer stop()

	client := New(b, nil)
	result, err := client.Submit(context.Background(), envelope.KindGetMap, validGetMapJob(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pngdata", string(result.Data))
	assert.Equal(t, envelope.ContentTypeImagePNG, result.ContentType)
}

func TestSubmitJobFailed(t *testing.T) {
	b := broker.NewMemory()
	stop := fakeWorker(t, b, true)
	defer stop()

	client := New(b, nil)
	_, err := client.Submit(context.Background(), envelope.KindGetMap, validGetMapJob(), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobFailed)

	var failedErr *JobFailedError
	require.ErrorAs(t, err, &failedErr)
	assert.Equal(t, "boom", failedErr.Detail)
}

func TestSubmitTimeout(t *testing.T) {
	b := broker.NewMemory()
	client := New(b, nil)

	_, err := client.Submit(context.Background(), envelope.KindGetMap, validGetMapJob(), 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobTimeout)

	_, ok, err := b.GetRecord(context.Background(), "irrelevant")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitCancellation(t *testing.T) {
	b := broker.NewMemory()
	client := New(b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Submit(ctx, envelope.KindGetMap, validGetMapJob(), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobCancelled)
}

func TestSubmitUnsupportedKind(t *testing.T) {
	b := broker.NewMemory()
	client := New(b, nil)

	_, err := client.Submit(context.Background(), envelope.Kind("Bogus"), validGetMapJob(), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, envelope.ErrUnsupportedJobKind)
}
