package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/anglepath/motion"
)

var motionsCmd = &cobra.Command{
	Use:   "motions",
	Short: "List the motion catalog with groups and costs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		costs, err := cfg.Costs.Table()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MOTION\tGROUP\tCOST\tTARGET LOCK")
		for _, m := range motion.All() {
			lock := ""
			if m.TargetLock() {
				lock = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name(), m.Group(), costs.Base[m], lock)
		}
		fmt.Fprintln(tw, "\nCHAIN\t\tCOST\t")
		for _, prev := range motion.All() {
			for _, next := range motion.All() {
				p := motion.Pair{Prev: prev, Next: next}
				if c, ok := costs.Chains[p]; ok {
					fmt.Fprintf(tw, "%s\t\t%s\t\n", p, c)
				}
			}
		}

		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(motionsCmd)
}
