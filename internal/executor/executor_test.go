package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostrata/jobfabric/internal/envelope"
)

func TestNullAlwaysFails(t *testing.T) {
	_, err := Null{}.Process(context.Background(), envelope.KindGetMap, nil)
	require.Error(t, err)
}

func TestFakeReturnsConfiguredResult(t *testing.T) {
	f := NewFake()
	result, err := f.Process(context.Background(), envelope.KindGetFeatureInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, envelope.ContentTypeJSON, result.ContentType)
}

func TestFakeReturnsConfiguredError(t *testing.T) {
	f := NewFake()
	f.Err = assert.AnError
	_, err := f.Process(context.Background(), envelope.KindLegend, nil)
	assert.ErrorIs(t, err, assert.AnError)
}
