package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"l2domains/internal/domain"
	"l2domains/internal/loader"
	"l2domains/internal/logging"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// app holds flags shared by all commands
type app struct {
	snapshot string
	format   string
	logLevel string
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "l2domains",
		Short:         "Compute Layer-2 broadcast domains of a network snapshot",
		SilenceErrors: true,
		Long: `l2domains reads device configurations, the Layer-1 cabling and the VXLAN
overlay of a network snapshot and reports which Layer-3 interfaces share a
broadcast domain.

A snapshot is either a directory (devices/*.yaml, layer1.yaml, vxlan.yaml) or a
single YAML or JSON file as written by 'l2domains bundle'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.format {
			case formatTable, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unsupported output format %q", a.format)
			}
			logger, err := logging.New(logging.Options{Level: a.logLevel, Development: a.logLevel == "debug"})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.snapshot, "snapshot", "s", ".", "snapshot directory or file")
	flags.StringVarP(&a.format, "format", "f", formatTable, "output format: table, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newComputeCmd(a),
		newHubsCmd(a),
		newVxlanCmd(a),
		newBundleCmd(a),
	)
	return cmd
}

func (a *app) load() (*domain.Snapshot, error) {
	s, err := loader.Load(a.snapshot)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("snapshot loaded",
		zap.String("name", s.Name),
		zap.Int("devices", len(s.Configurations)),
		zap.Int("layer1_edges", len(s.Layer1)))
	return s, nil
}

// render writes v as JSON or YAML, or calls table for the table format
func (a *app) render(w io.Writer, v any, header []string, rows [][]string) error {
	switch a.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	writeTable(w, header, rows)
	return nil
}

func writeTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}
