package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/hems/app"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Optimize every configured scenario and print a cost summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			reports, err := svc.Compare(ctx)
			printReports(cmd.OutOrStdout(), reports)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func printReports(w io.Writer, reports []app.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scenario\tbattery kWh\tpv kW\tdays\tcost\tgrid only\tsavings\tcurtailed kWh\tstatus\t")
	for _, r := range reports {
		status := "ok"
		if r.Err != nil {
			status = "failed"
		}
		s := r.Summary
		fmt.Fprintf(tw, "%s\t%g\t%g\t%d\t%.2f\t%.2f\t%.2f\t%.1f\t%s\t\n",
			r.Scenario, r.Spec.BatteryKWh, r.Spec.PVKW, s.Days, s.Total, s.OnlyUncontrolledLoad, s.Savings(), s.CurtailedPVKWh, status)
	}
	_ = tw.Flush()
}
