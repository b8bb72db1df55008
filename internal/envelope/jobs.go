package envelope

import (
	"fmt"
	"strings"
)

// AbstractWmsParams carries the WMS-style rendering parameters shared by
// GetMap and GetFeatureInfo, grounded on
// original_source/interface/job.py's AbstractWmsParams dataclass.
type AbstractWmsParams struct {
	BBox          [4]float64        `json:"bbox"`
	CRS           string            `json:"crs"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	DPI           int               `json:"dpi,omitempty"`
	FormatOptions map[string]string `json:"format_options,omitempty"`
}

func (p AbstractWmsParams) validate() error {
	if p.CRS == "" {
		return newMissingField("service_params.crs")
	}
	if p.Width <= 0 {
		return newMissingField("service_params.width")
	}
	if p.Height <= 0 {
		return newMissingField("service_params.height")
	}
	return nil
}

// ServiceParams carries GetMap's WMS parameters: the shared bbox/crs/size
// fields plus the comma-joined layers/styles lists and output format,
// grounded on WmsGetMapParams in original_source/interface/job.py.
type ServiceParams struct {
	AbstractWmsParams
	Layers string `json:"layers"`
	Styles string `json:"styles"`
	Format string `json:"format"`
}

func (p ServiceParams) validate() error {
	if err := p.AbstractWmsParams.validate(); err != nil {
		return err
	}
	if p.Layers == "" {
		return newMissingField("service_params.layers")
	}
	if p.Format == "" {
		return newMissingField("service_params.format")
	}
	layers := splitCSV(p.Layers)
	styles := splitCSV(p.Styles)
	if len(styles) > 0 && len(styles) != len(layers) {
		return newMalformed("service_params.styles length must match service_params.layers length")
	}
	return nil
}

// LayerNames splits the comma-joined Layers field, mirroring
// WmsGetMapParams.layers in original_source.
func (p ServiceParams) LayerNames() []string {
	return splitCSV(p.Layers)
}

// StyleNames splits the comma-joined Styles field.
func (p ServiceParams) StyleNames() []string {
	return splitCSV(p.Styles)
}

// FeatureInfoParams carries GetFeatureInfo's WMS parameters: the shared
// bbox/crs/size fields, the pixel coordinate of the query, the requested
// info format, and the queried layer list, grounded on
// WmsGetFeatureInfoParams in original_source/interface/job.py.
type FeatureInfoParams struct {
	AbstractWmsParams
	X           *int   `json:"x,omitempty"`
	Y           *int   `json:"y,omitempty"`
	I           *int   `json:"i,omitempty"`
	J           *int   `json:"j,omitempty"`
	InfoFormat  string `json:"info_format"`
	QueryLayers string `json:"query_layers"`
}

func (p FeatureInfoParams) validate() error {
	if err := p.AbstractWmsParams.validate(); err != nil {
		return err
	}
	if p.InfoFormat == "" {
		return newMissingField("feature_info_params.info_format")
	}
	if p.QueryLayers == "" {
		return newMissingField("feature_info_params.query_layers")
	}
	// At least one of (x,y) or (i,j) must locate the query pixel. Pointers
	// distinguish "unset" from a legitimate 0 pixel coordinate.
	hasXY := p.X != nil && p.Y != nil
	hasIJ := p.I != nil && p.J != nil
	if !hasXY && !hasIJ {
		return newMissingField("feature_info_params.{x,y}|{i,j}")
	}
	return nil
}

// QueryLayerNames splits the comma-joined QueryLayers field.
func (p FeatureInfoParams) QueryLayerNames() []string {
	return splitCSV(p.QueryLayers)
}

// FeatureQuery names one of the dataset queries a GetFeature job asks for,
// grounded on FeatureQuery in original_source/interface/job.py.
type FeatureQuery struct {
	Datasets []string `json:"datasets"`
	Alias    []string `json:"alias"`
	Filter   string   `json:"filter,omitempty"`
}

func (q FeatureQuery) validate(index int) error {
	if len(q.Datasets) == 0 {
		return newMissingField(fmt.Sprintf("queries[%d].datasets", index))
	}
	if len(q.Alias) > 0 && len(q.Alias) != len(q.Datasets) {
		return newMalformed(fmt.Sprintf("queries[%d].alias length must match queries[%d].datasets length", index, index))
	}
	return nil
}

// abstractMapJob carries the fields common to every job kind that renders
// or queries a project: the svg search path and the project's layer sets,
// grounded on QslAbstractMapJob in original_source/interface/job.py.
type abstractMapJob struct {
	SVGPaths     []string `json:"svg_paths,omitempty"`
	RasterLayers []Raster `json:"raster_layers,omitempty"`
	VectorLayers []Vector `json:"vector_layers,omitempty"`
	CustomLayers []Custom `json:"custom_layers,omitempty"`
	ExtentBuffer float64  `json:"extent_buffer,omitempty"`
}

// datasetByName searches raster, then vector, then custom layers for name,
// mirroring QslGetMapJob.get_dataset_by_name's search order.
func (j abstractMapJob) datasetByName(name string) (interface{}, error) {
	for _, r := range j.RasterLayers {
		if r.Name == name {
			return r, nil
		}
	}
	for _, v := range j.VectorLayers {
		if v.Name == name {
			return v, nil
		}
	}
	for _, c := range j.CustomLayers {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, newMissingField("dataset:" + name)
}

// GetMapJob renders a map image for the requested layers, grounded on
// QslGetMapJob in original_source/interface/job.py.
type GetMapJob struct {
	abstractMapJob
	ServiceParams ServiceParams `json:"service_params"`
}

// Validate checks the structural invariants spec §3/§4.1 require before a
// GetMapJob is handed to a JobExecutor: every layer named in
// ServiceParams.Layers must resolve via DatasetByName.
func (j *GetMapJob) Validate() error {
	if err := j.ServiceParams.validate(); err != nil {
		return err
	}
	for _, name := range j.ServiceParams.LayerNames() {
		if _, err := j.DatasetByName(name); err != nil {
			return err
		}
	}
	return nil
}

// DatasetByName resolves a layer referenced by ServiceParams.Layers to its
// full Raster, Vector or Custom description.
func (j *GetMapJob) DatasetByName(name string) (interface{}, error) {
	return j.datasetByName(name)
}

// GetFeatureInfoJob queries attribute/value info at a pixel location,
// grounded on QslGetFeatureInfoJob in original_source/interface/job.py.
type GetFeatureInfoJob struct {
	abstractMapJob
	FeatureInfoParams FeatureInfoParams `json:"feature_info_params"`
}

// Validate checks FeatureInfoParams and that every queried layer resolves.
func (j *GetFeatureInfoJob) Validate() error {
	if err := j.FeatureInfoParams.validate(); err != nil {
		return err
	}
	for _, name := range j.FeatureInfoParams.QueryLayerNames() {
		if _, err := j.datasetByName(name); err != nil {
			return err
		}
	}
	return nil
}

// DatasetByName resolves a layer referenced by FeatureInfoParams.QueryLayers.
func (j *GetFeatureInfoJob) DatasetByName(name string) (interface{}, error) {
	return j.datasetByName(name)
}

// LegendJob renders a legend image for the project's layers, grounded on
// QslLegendJob in original_source/interface/job.py.
type LegendJob struct {
	abstractMapJob
}

// Validate reports whether a LegendJob names at least one renderable layer.
func (j *LegendJob) Validate() error {
	if len(j.RasterLayers) == 0 && len(j.VectorLayers) == 0 && len(j.CustomLayers) == 0 {
		return newMissingField("legend job: at least one layer")
	}
	return nil
}

// GetFeatureJob runs one or more attribute/geometry queries against the
// project's vector layers, grounded on QslGetFeatureJob in
// original_source/interface/job.py.
type GetFeatureJob struct {
	abstractMapJob
	Queries    []FeatureQuery `json:"queries"`
	StartIndex int            `json:"start_index,omitempty"`
	Count      int            `json:"count,omitempty"`
}

// Validate checks that at least one query is present and each query's
// alias/datasets lengths line up.
func (j *GetFeatureJob) Validate() error {
	if len(j.Queries) == 0 {
		return newMissingField("queries")
	}
	for i, q := range j.Queries {
		if err := q.validate(i); err != nil {
			return err
		}
		for _, name := range q.Datasets {
			if _, err := j.datasetByName(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// DatasetByName resolves a layer referenced by one of Queries[i].Datasets.
func (j *GetFeatureJob) DatasetByName(name string) (interface{}, error) {
	return j.datasetByName(name)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
