package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"l2domains/internal/codec"
	"l2domains/internal/domain"
	"l2domains/internal/service"
)

func newComputeCmd(a *app) *cobra.Command {
	var flags struct {
		workers   int
		iface     string
		timeout   time.Duration
		summaries bool
	}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the broadcast domains of a snapshot",
		Example: `  l2domains compute -s ./snapshots/lab
  l2domains compute -s lab.yaml --interface 'r1[eth0]'
  l2domains compute -s ./snapshots/lab -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var only *domain.NodeInterfacePair
			if flags.iface != "" {
				nip, err := domain.ParseNodeInterfacePair(flags.iface)
				if err != nil {
					return err
				}
				only = &nip
			}

			s, err := a.load()
			if err != nil {
				return err
			}
			opts := []service.Option{service.WithLogger(a.logger), service.WithWorkers(flags.workers)}
			if flags.timeout > 0 {
				opts = append(opts, service.WithTimeout(flags.timeout))
			}
			analysis, err := service.NewAnalysisService(nil, nil, opts...).Compute(cmd.Context(), s)
			if err != nil {
				return err
			}

			if only != nil {
				return a.renderDomainOf(cmd, analysis, *only)
			}
			if a.format != formatTable {
				c, err := codec.ForFormat(a.format)
				if err != nil {
					return err
				}
				return c.Export(analysis, cmd.OutOrStdout())
			}

			groups := analysis.Domains.Groups()
			rows := make([][]string, 0, len(groups))
			for _, members := range groups {
				rows = append(rows, []string{
					strconv.Itoa(analysis.Domains[members[0]]),
					strconv.Itoa(len(members)),
					joinNips(members),
				})
			}
			writeTable(cmd.OutOrStdout(), []string{"DOMAIN", "SIZE", "INTERFACES"}, rows)
			if flags.summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d devices, %d interfaces, %d hubs, %d vxlan edges, %d domains in %s\n",
					analysis.Devices, analysis.Interfaces, analysis.Hubs, analysis.VxlanEdges,
					analysis.DomainCount, analysis.Duration)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", runtime.GOMAXPROCS(0), "concurrent searches")
	cmd.Flags().StringVarP(&flags.iface, "interface", "i", "", "only show the domain of this interface, as host[iface]")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "abort the computation after this long, e.g. 30s")
	cmd.Flags().BoolVar(&flags.summaries, "summary", false, "print snapshot statistics after the table")
	return cmd
}

// renderDomainOf prints the members of the domain containing nip
func (a *app) renderDomainOf(cmd *cobra.Command, analysis *domain.Analysis, nip domain.NodeInterfacePair) error {
	id, ok := analysis.Domains[nip]
	if !ok {
		return fmt.Errorf("%s is not a Layer-3 interface in a broadcast domain", nip)
	}
	var members []domain.NodeInterfacePair
	for _, other := range analysis.Domains.Interfaces() {
		if analysis.Domains[other] == id {
			members = append(members, other)
		}
	}

	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{m.Hostname, m.Interface})
	}
	return a.render(cmd.OutOrStdout(), members, []string{"HOST", "INTERFACE"}, rows)
}

func joinNips(nips []domain.NodeInterfacePair) string {
	parts := make([]string, len(nips))
	for i, n := range nips {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}
