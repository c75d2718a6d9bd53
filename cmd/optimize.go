package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/hems/app"
)

var hold bool

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize the configured system over the input and export the schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			rep, err := svc.Optimize(ctx)
			if len(rep.Results) > 0 {
				s := rep.Summary
				fmt.Fprintf(cmd.OutOrStdout(), "%d days from %s: cost %.2f, grid only %.2f, savings %.2f, curtailed %.1f kWh\n",
					s.Days, rep.Results[0].Name(), s.Total, s.OnlyUncontrolledLoad, s.Savings(), s.CurtailedPVKWh)
			}
			if err != nil {
				return err
			}
			if hold {
				fmt.Fprintln(cmd.OutOrStdout(), "serving metrics, interrupt to exit")
				<-ctx.Done()
			}
			return nil
		})
	},
}

func init() {
	optimizeCmd.Flags().BoolVar(&hold, "hold", false, "keep serving metrics after the run until interrupted")
	rootCmd.AddCommand(optimizeCmd)
}
