package envelope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGetMapJob() *GetMapJob {
	job := &GetMapJob{}
	job.RasterLayers = []Raster{{Name: "ortho", Driver: "GTiff", Path: "ortho.tif", Source: RasterSource{GDAL: &GDALSource{}}}}
	job.ServiceParams = ServiceParams{
		AbstractWmsParams: AbstractWmsParams{
			BBox:   [4]float64{0, 0, 10, 10},
			CRS:    "EPSG:4326",
			Width:  256,
			Height: 256,
		},
		Layers: "ortho",
		Format: "image/png",
	}
	return job
}

func TestNewEnvelopeEncodeContainsTypeMarker(t *testing.T) {
	env, err := NewEnvelope(KindGetMap, validGetMapJob())
	require.NoError(t, err)
	require.NotEmpty(t, env.ID)

	raw, err := env.Encode()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"type": "GetMap"`))

	kind, ok := ProbeKind(raw)
	require.True(t, ok)
	assert.Equal(t, KindGetMap, kind)
}

func TestDecodeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(KindGetMap, validGetMapJob())
	require.NoError(t, err)
	raw, err := env.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, env.ID, decoded.ID)
	assert.Equal(t, KindGetMap, decoded.Type)

	job, err := decoded.DecodeJob()
	require.NoError(t, err)
	gm, ok := job.(*GetMapJob)
	require.True(t, ok)
	assert.Equal(t, "ortho", gm.ServiceParams.LayerNames()[0])
}

func TestDecodeMissingID(t *testing.T) {
	_, err := Decode([]byte(`{"type": "GetMap", "job": {}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestDecodeUnsupportedKind(t *testing.T) {
	_, err := Decode([]byte(`{"id": "x", "type": "DropTable", "job": {}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedJobKind)
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestGetMapJobValidateUnknownLayer(t *testing.T) {
	job := validGetMapJob()
	job.ServiceParams.Layers = "ortho,missing"
	err := job.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestGetMapJobValidateStylesLengthMismatch(t *testing.T) {
	job := validGetMapJob()
	job.ServiceParams.Layers = "ortho,second"
	job.RasterLayers = append(job.RasterLayers, Raster{Name: "second", Source: RasterSource{WMS: &WMSSource{}}})
	job.ServiceParams.Styles = "default"
	err := job.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestGetMapJobDatasetByName(t *testing.T) {
	job := validGetMapJob()
	ds, err := job.DatasetByName("ortho")
	require.NoError(t, err)
	raster, ok := ds.(Raster)
	require.True(t, ok)
	assert.Equal(t, "ortho", raster.Name)

	_, err = job.DatasetByName("nope")
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestFeatureInfoParamsRequiresPixel(t *testing.T) {
	job := &GetFeatureInfoJob{}
	job.VectorLayers = []Vector{{Name: "parcels", Source: VectorSource{OGR: &OGRSource{}}}}
	job.FeatureInfoParams = FeatureInfoParams{
		AbstractWmsParams: AbstractWmsParams{CRS: "EPSG:4326", Width: 100, Height: 100},
		InfoFormat:        "application/json",
		QueryLayers:       "parcels",
	}
	err := job.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	x, y := 10, 20
	job.FeatureInfoParams.X = &x
	job.FeatureInfoParams.Y = &y
	require.NoError(t, job.Validate())
}

func TestFeatureInfoParamsAcceptsZeroPixel(t *testing.T) {
	job := &GetFeatureInfoJob{}
	job.VectorLayers = []Vector{{Name: "parcels", Source: VectorSource{OGR: &OGRSource{}}}}
	x, y := 0, 0
	job.FeatureInfoParams = FeatureInfoParams{
		AbstractWmsParams: AbstractWmsParams{CRS: "EPSG:4326", Width: 100, Height: 100},
		InfoFormat:        "application/json",
		QueryLayers:       "parcels",
		X:                 &x,
		Y:                 &y,
	}
	require.NoError(t, job.Validate())
}

func TestGetFeatureJobAliasLengthMismatch(t *testing.T) {
	job := &GetFeatureJob{}
	job.VectorLayers = []Vector{{Name: "parcels", Source: VectorSource{OGR: &OGRSource{}}}}
	job.Queries = []FeatureQuery{{
		Datasets: []string{"parcels"},
		Alias:    []string{"a", "b"},
	}}
	err := job.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestLegendJobRequiresAtLeastOneLayer(t *testing.T) {
	job := &LegendJob{}
	err := job.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestDefaultContentType(t *testing.T) {
	ct, ok := DefaultContentType(KindGetMap)
	require.True(t, ok)
	assert.Equal(t, ContentTypeImagePNG, ct)

	ct, ok = DefaultContentType(KindGetFeatureInfo)
	require.True(t, ok)
	assert.Equal(t, ContentTypeJSON, ct)

	_, ok = DefaultContentType(Kind("bogus"))
	assert.False(t, ok)
}
