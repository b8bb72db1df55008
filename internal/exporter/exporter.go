// Package exporter implements the project exporter supplemented from
// original_source/exporter/{api.py,extract.py}: flattening a project's
// layer tree into the portable configuration document consumed by job
// submitters (the same Raster/Vector/Custom shapes internal/envelope
// decodes). The Flask HTTP endpoint and the QGIS project-file parsing
// (.qgs/.qgz) are Non-goals — this package accepts an already-built
// Project value (typically produced by a test fixture or a future
// adapter) and only handles flattening + serialization.
//
// Grounded on exporter/extract.py's unify-layer-names-by-group flattening
// and exporter/api.py's ExportParameters/allowed_output_formats, with json
// and yaml (gopkg.in/yaml.v3, the teacher's config-loading library)
// standing in for the original's json/xml pair.
package exporter

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/geostrata/jobfabric/internal/envelope"
)

// Format names a supported output serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format string, grounded on
// api.py's allowed_output_formats check.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("allowed output formats are json|yaml, not %q", s)
	}
}

// Parameters mirrors ExportParameters in
// original_source/interface/exporter.py: which project to export and how.
type Parameters struct {
	Mandant                string
	Project                string
	OutputFormat           Format
	UnifyLayerNamesByGroup bool
}

// Project is the already-parsed in-memory layer tree this package
// flattens and serializes. A future adapter that reads an actual .qgs/.qgz
// file would populate this from QGIS project state; this module has no
// such adapter and has no runtime coupling to the dispatcher or worker.
type Project struct {
	Name   string            `json:"name" yaml:"name"`
	Groups []Group           `json:"groups,omitempty" yaml:"groups,omitempty"`
	Raster []envelope.Raster `json:"raster_layers,omitempty" yaml:"raster_layers,omitempty"`
	Vector []envelope.Vector `json:"vector_layers,omitempty" yaml:"vector_layers,omitempty"`
	Custom []envelope.Custom `json:"custom_layers,omitempty" yaml:"custom_layers,omitempty"`
}

// Group is a named layer-tree group, the unit create_unified_short_name in
// extract.py walks to build a "group.layer" short name when
// UnifyLayerNamesByGroup is set.
type Group struct {
	Path       []string `json:"path" yaml:"path"`
	LayerNames []string `json:"layer_names" yaml:"layer_names"`
}

// Document is the portable configuration document Export produces: a
// flattened, optionally group-prefixed layer set ready to drop into a
// GetMapJob/GetFeatureJob's layer lists.
type Document struct {
	Project string            `json:"project" yaml:"project"`
	Mandant string            `json:"mandant" yaml:"mandant"`
	Raster  []envelope.Raster `json:"raster_layers" yaml:"raster_layers"`
	Vector  []envelope.Vector `json:"vector_layers" yaml:"vector_layers"`
	Custom  []envelope.Custom `json:"custom_layers" yaml:"custom_layers"`
}

// Flatten applies UnifyLayerNamesByGroup's short-name rule (join the
// group path and the layer's own name with ".") and produces the portable
// Document, grounded on extract.py's create_unified_short_name.
func Flatten(params Parameters, project Project) Document {
	doc := Document{Project: params.Project, Mandant: params.Mandant}

	if !params.UnifyLayerNamesByGroup {
		doc.Raster = project.Raster
		doc.Vector = project.Vector
		doc.Custom = project.Custom
		return doc
	}

	groupPath := make(map[string][]string, len(project.Groups))
	for _, g := range project.Groups {
		for _, name := range g.LayerNames {
			groupPath[name] = g.Path
		}
	}
	unify := func(name string) string {
		path, ok := groupPath[name]
		if !ok || len(path) == 0 {
			return name
		}
		return strings.Join(append(append([]string{}, path...), name), ".")
	}

	for _, r := range project.Raster {
		r.Name = unify(r.Name)
		doc.Raster = append(doc.Raster, r)
	}
	for _, v := range project.Vector {
		v.Name = unify(v.Name)
		doc.Vector = append(doc.Vector, v)
	}
	for _, c := range project.Custom {
		c.Name = unify(c.Name)
		doc.Custom = append(doc.Custom, c)
	}
	return doc
}

// Export flattens project and serializes it in params.OutputFormat.
func Export(params Parameters, project Project) ([]byte, error) {
	doc := Flatten(params, project)

	switch params.OutputFormat {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal export document as json: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal export document as yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", params.OutputFormat)
	}
}
