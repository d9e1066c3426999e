package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"l2domains/internal/domain"
)

func newVxlanCmd(a *app) *cobra.Command {
	var layer2Only bool
	cmd := &cobra.Command{
		Use:   "vxlan",
		Short: "List the VXLAN adjacencies of a snapshot",
		Long: `Lists the VNI adjacencies used for the computation: the declared overlay if
the snapshot has one, otherwise the adjacencies derived from matching VNI
settings on each pair of devices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			s, err := a.load()
			if err != nil {
				return err
			}
			s.Normalize()
			topo := s.VxlanTopology()
			edges := topo.Edges()
			if layer2Only {
				edges = topo.Layer2Edges()
			}
			if edges == nil {
				edges = []domain.VxlanEdge{}
			}

			rows := make([][]string, 0, len(edges))
			for _, e := range edges {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(e.Node1.VNI), 10),
					string(e.Node1.Layer),
					e.Node1.Hostname,
					e.Node2.Hostname,
				})
			}
			return a.render(cmd.OutOrStdout(), edges, []string{"VNI", "LAYER", "HOST", "PEER"}, rows)
		},
	}
	cmd.Flags().BoolVar(&layer2Only, "layer2", false, "only show Layer-2 VNIs")
	return cmd
}
