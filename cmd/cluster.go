package cmd

import (
	"github.com/spf13/cobra"

	"tasnim.dev/opfyx/internal/paginate"
	"tasnim.dev/opfyx/internal/render"
)

func newClusterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Work with ECS clusters",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.connect(ctx)
			if err != nil {
				return err
			}

			p := a.printer()
			tbl := render.NewTable(render.ClusterHeaders...)
			for c, err := range paginate.Items(svc.ECS.Clusters(ctx)) {
				if err != nil {
					return err
				}
				tbl.Append(p.ClusterRow(c)...)
			}
			return p.Table(tbl)
		},
	})
	return cmd
}
