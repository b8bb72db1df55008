package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostrata/jobfabric/internal/broker"
	"github.com/geostrata/jobfabric/internal/envelope"
	"github.com/geostrata/jobfabric/internal/executor"
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

func fastConfig() Config {
	return Config{
		ConnectRetryInterval: time.Millisecond,
		InitialBackoff:       time.Millisecond,
		MaxBackoff:           10 * time.Millisecond,
	}
}

func TestWorkerProcessesJobSuccessfully(t *testing.T) {
	b := broker.NewMemory()
	w := New(b, executor.NewFake(), fastConfig(), nil, nil)

	env, err := envelope.NewEnvelope(envelope.KindGetMap, validGetMapJob())
	require.NoError(t, err)
	raw, err := env.Encode()
	require.NoError(t, err)
	require.NoError(t, b.Push(context.Background(), env.ID, raw))

	msgs, cancel, err := b.Subscribe(context.Background(), env.ID)
	require.NoError(t, err)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	select {
	case <-msgs:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not publish a result")
	}

	rec, ok, err := b.GetRecord(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, broker.StatusSucceed, rec.Status)
	assert.Equal(t, envelope.ContentTypeImagePNG, rec.ContentType)
	assert.GreaterOrEqual(t, rec.Duration, time.Duration(0))

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after context cancellation")
	}
}

func TestWorkerRecordsExecutorFailure(t *testing.T) {
	b := broker.NewMemory()
	fake := executor.NewFake()
	fake.Err = assert.AnError
	w := New(b, fake, fastConfig(), nil, nil)

	env, err := envelope.NewEnvelope(envelope.KindGetMap, validGetMapJob())
	require.NoError(t, err)
	raw, err := env.Encode()
	require.NoError(t, err)
	require.NoError(t, b.Push(context.Background(), env.ID, raw))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		rec, ok, err := b.GetRecord(context.Background(), env.ID)
		return err == nil && ok && rec.Status == broker.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	rec, _, err := b.GetRecord(context.Background(), env.ID)
	require.NoError(t, err)
	assert.Contains(t, rec.Error, assert.AnError.Error())
	assert.Zero(t, rec.Duration)
}

func TestWorkerDiscardsUnsupportedKindAndContinues(t *testing.T) {
	b := broker.NewMemory()
	w := New(b, executor.NewFake(), fastConfig(), nil, nil)

	require.NoError(t, b.Push(context.Background(), "bogus", []byte(`{"id": "bogus", "type": "NotAJob", "job": {}}`)))

	env, err := envelope.NewEnvelope(envelope.KindGetMap, validGetMapJob())
	require.NoError(t, err)
	raw, err := env.Encode()
	require.NoError(t, err)
	require.NoError(t, b.Push(context.Background(), env.ID, raw))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		rec, ok, err := b.GetRecord(context.Background(), env.ID)
		return err == nil && ok && rec.Status == broker.StatusSucceed
	}, 2*time.Second, 10*time.Millisecond)
}
