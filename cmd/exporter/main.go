// Command exporter flattens an in-memory project layer tree into the
// portable configuration document job submitters consume, the feature
// original_source/exporter/{api.py,extract.py} provided. It has no HTTP
// front-end and does not parse .qgs/.qgz project files itself; it reads
// a JSON-encoded exporter.Project fixture from --source and writes the
// flattened document to --output.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geostrata/jobfabric/internal/config"
	"github.com/geostrata/jobfabric/internal/exporter"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "exporter"}
	root.AddCommand(newExportCmd())
	return root
}

func newExportCmd() *cobra.Command {
	var (
		mandant      string
		project      string
		source       string
		output       string
		format       string
		unifyByGroup bool
		configPath   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten a project's layer tree into a portable configuration document",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exporter.Parameters{
				Mandant:                mandant,
				Project:                project,
				UnifyLayerNamesByGroup: unifyByGroup,
			}

			if configPath != "" {
				fileCfg, err := config.LoadExporterConfig(configPath)
				if err != nil {
					return err
				}
				if params.Mandant == "" {
					params.Mandant = fileCfg.Mandant
				}
				if params.Project == "" {
					params.Project = fileCfg.Project
				}
				if source == "" {
					source = fileCfg.Source
				}
				if output == "" {
					output = fileCfg.Output
				}
				if format == "" {
					format = fileCfg.Format
				}
				if !unifyByGroup {
					params.UnifyLayerNamesByGroup = fileCfg.UnifyLayerNamesByGroup
				}
			}
			if source == "" {
				return fmt.Errorf("--source is required (as a flag or in --config)")
			}
			if format == "" {
				format = "json"
			}

			outputFormat, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			params.OutputFormat = outputFormat

			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read --source %s: %w", source, err)
			}
			var proj exporter.Project
			if err := json.Unmarshal(data, &proj); err != nil {
				return fmt.Errorf("parse --source %s as project fixture: %w", source, err)
			}

			doc, err := exporter.Export(params, proj)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(doc)
				return err
			}
			return os.WriteFile(output, doc, 0o644)
		},
	}

	cmd.Flags().StringVar(&mandant, "mandant", "", "mandant name")
	cmd.Flags().StringVar(&project, "project", "", "project name")
	cmd.Flags().StringVar(&source, "source", "", "path to a JSON-encoded project fixture")
	cmd.Flags().StringVar(&output, "output", "", "output path; '-' or empty for stdout")
	cmd.Flags().StringVar(&format, "format", "", "output format: json|yaml")
	cmd.Flags().BoolVar(&unifyByGroup, "unify-layer-names-by-group", false, "prefix layer names with their group path")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file supplying flag defaults")

	return cmd
}
