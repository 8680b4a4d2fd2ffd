package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/avoid"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/planner"
	"github.com/katalvlaran/anglepath/report"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find the cheapest motion sequences to the target angles",
	Long: `Explores every angle reachable from the start angles with the allowed
movement groups, then prints the cheapest routes to each target angle.

Angles are hex, with or without 0x. Groups may use underscores for spaces.
List flags take comma-separated values or may be repeated; space-separated
values after a flag are rejected.

  anglepath find -g basic -g target_enabled -s 0x8000,0x4000 -f 0x5E19 -a 0xB168,0xB188 -a 0xABAB,0x1234`,
	Args: noStrayValues,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	f := findCmd.Flags()
	f.StringSliceP("allowed-groups", "g", nil, "movement groups to allow")
	f.StringSliceP("start-angles", "s", nil, "start angles")
	f.StringSliceP("find-angles", "f", nil, "target angles")
	f.StringArrayP("avoid-angles", "a", nil, "low,high range out of which target-lock motions are banned")
	f.Int("sample", 0, "paths enumerated per target (default 35)")
	f.Int("number", 0, "routes kept per target (default 4)")
	f.String("flex", "", "tolerated cost overrun (default 3)")
	f.StringP("output", "o", "text", "output format: text, markdown or json")
	f.String("color", "auto", "color output: auto, always or never")
}

// noStrayValues rejects positional arguments, which are almost always list
// values written space-separated after a flag (-s 0x8000 0x4000).
func noStrayValues(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q: separate list values with commas or repeat the flag", args[0])
	}

	return nil
}

func runFind(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	req, err := requestFromFlags(cmd, cfg.Search)
	if err != nil {
		return err
	}
	costs, err := cfg.Costs.Table()
	if err != nil {
		return err
	}
	outFormat, _ := cmd.Flags().GetString("output")
	format, err := report.ParseFormat(outFormat)
	if err != nil {
		return err
	}

	opts := []planner.Option{planner.WithLogger(log)}
	if cfg.Server.Concurrency > 0 {
		opts = append(opts, planner.WithConcurrency(cfg.Server.Concurrency))
	}
	c, err := openCache(cmd, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("result cache disabled")
	} else if c != nil {
		defer c.Close()
		opts = append(opts, planner.WithCache(c))
	}

	p := planner.New(motion.DefaultTable, costs, opts...)
	res, err := p.Plan(cmd.Context(), req)
	if err != nil {
		return err
	}

	return writer(cmd).Write(format, res)
}

// requestFromFlags overlays the flags that were set on base.
func requestFromFlags(cmd *cobra.Command, base planner.Request) (planner.Request, error) {
	req := base
	f := cmd.Flags()

	if f.Changed("allowed-groups") {
		names, _ := f.GetStringSlice("allowed-groups")
		groups, err := motion.ParseGroups(names)
		if err != nil {
			return req, err
		}
		req.Groups = groups
	}
	for flag, dst := range map[string]*[]angle.State{
		"start-angles": &req.Starts,
		"find-angles":  &req.Targets,
	} {
		if !f.Changed(flag) {
			continue
		}
		list, _ := f.GetStringSlice(flag)
		states, err := angle.ParseAll(list)
		if err != nil {
			return req, err
		}
		*dst = states
	}
	if f.Changed("avoid-angles") {
		list, _ := f.GetStringArray("avoid-angles")
		ranges, err := avoid.ParseRanges(list)
		if err != nil {
			return req, err
		}
		req.Avoid = ranges
	}
	if f.Changed("sample") {
		req.Sample, _ = f.GetInt("sample")
	}
	if f.Changed("number") {
		req.Number, _ = f.GetInt("number")
	}
	if f.Changed("flex") {
		s, _ := f.GetString("flex")
		flex, err := cost.Parse(s)
		if err != nil {
			return req, err
		}
		req.Flex = &flex
	}

	return req, nil
}

func writer(cmd *cobra.Command) *report.Writer {
	mode, _ := cmd.Flags().GetString("color")
	out := cmd.OutOrStdout()
	if file, ok := out.(*os.File); ok && mode == "auto" {
		return report.ForFile(file, motion.DefaultTable)
	}

	return report.New(out, motion.DefaultTable, report.WithColor(mode == "always"))
}
