package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"l2domains/internal/broadcast"
	"l2domains/internal/service"
)

func newHubsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hubs",
		Short: "List the Layer-1 hubs inferred from the cabling",
		Long: `Every set of physical interfaces connected by cables forms one hub. Physical
interfaces with no cable attach to the global hub when the snapshot has no
cabling for their device.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			s, err := a.load()
			if err != nil {
				return err
			}
			_, hubs, err := service.NewAnalysisService(nil, nil, service.WithLogger(a.logger)).
				ComputeWithHubs(cmd.Context(), s)
			if err != nil {
				return err
			}
			if hubs == nil {
				hubs = []*broadcast.L1Hub{}
			}

			rows := make([][]string, 0, len(hubs))
			for _, h := range hubs {
				rows = append(rows, []string{h.ID, strconv.Itoa(len(h.Members)), joinNips(h.Members)})
			}
			return a.render(cmd.OutOrStdout(), hubs, []string{"HUB", "SIZE", "MEMBERS"}, rows)
		},
	}
}
