package envelope

// Raster, Vector and Custom describe the layers a GetMap or GetFeature job
// references. They mirror the dataset shapes the project exporter produces
// (see internal/exporter): a name the job payload looks the layer up by, the
// driver QGIS would load it with, a path (local or remote), and exactly one
// populated Source variant. The rendering/query engine behind JobExecutor is
// the only consumer of the Source details; the envelope codec only needs
// enough shape to decode and round-trip them.

// Raster describes a raster (imagery/elevation) dataset.
type Raster struct {
	Name   string       `json:"name"`
	Driver string       `json:"driver"`
	Path   string       `json:"path"`
	Source RasterSource `json:"source"`
}

// RasterSource names which backend produced the raster's Path. Exactly one
// field should be non-nil.
type RasterSource struct {
	GDAL *GDALSource `json:"gdal,omitempty"`
	WMS  *WMSSource  `json:"wms,omitempty"`
}

// GDALSource marks a raster loaded through a GDAL driver. Remote indicates
// Path is a URL rather than a path relative to the worker's data root.
type GDALSource struct {
	Remote bool `json:"remote"`
}

// WMSSource marks a raster backed by an upstream WMS layer.
type WMSSource struct{}

// Vector describes a vector (feature) dataset.
type Vector struct {
	Name   string       `json:"name"`
	Driver string       `json:"driver"`
	Path   string       `json:"path"`
	Source VectorSource `json:"source"`
}

// VectorSource names which backend produced the vector's Path. Exactly one
// field should be non-nil.
type VectorSource struct {
	OGR      *OGRSource      `json:"ogr,omitempty"`
	Postgres *PostgresSource `json:"postgres,omitempty"`
	WFS      *WFSSource      `json:"wfs,omitempty"`
}

// OGRSource marks a vector layer loaded through an OGR driver.
type OGRSource struct {
	Remote bool `json:"remote"`
}

// PostgresSource marks a vector layer backed by a PostGIS table.
type PostgresSource struct{}

// WFSSource marks a vector layer backed by an upstream WFS layer.
type WFSSource struct{}

// Custom describes a dataset that falls outside the raster/vector split,
// currently only remote vector tiles.
type Custom struct {
	Name   string       `json:"name"`
	Driver string       `json:"driver"`
	Path   string       `json:"path"`
	Source CustomSource `json:"source"`
}

// CustomSource names which backend produced the custom layer's Path.
type CustomSource struct {
	VectorTile *VectorTileSource `json:"vector_tile,omitempty"`
}

// VectorTileSource marks a custom layer backed by a vector tile source.
// Only remote vector tiles are supported; a non-remote VectorTile source is
// a worker-side NotImplemented condition, not an envelope validation error.
type VectorTileSource struct {
	Remote bool `json:"remote"`
}
