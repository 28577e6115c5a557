package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/mash/internal/config"
	"github.com/papapumpkin/mash/internal/manifest"
	"github.com/papapumpkin/mash/internal/plan"
	"github.com/papapumpkin/mash/internal/ui"
)

var planCmd = &cobra.Command{
	Use:   "plan [manifest]",
	Short: "Classify and order the manifest without executing anything",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Bool("json", false, "output the plan as JSON to stdout")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.ManifestPath = args[0]
	}

	path, err := manifest.Locate(cfg.ManifestPath)
	if err != nil {
		return err
	}
	buckets, err := manifest.Load(path)
	if err != nil {
		return err
	}
	steps, err := plan.Build(buckets, plan.Current())
	if err != nil {
		return err
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		return writePlanJSON(os.Stdout, steps)
	}
	ui.New().PlanRender(steps)
	return nil
}

// writePlanJSON emits the plan as an ordered JSON array on w.
func writePlanJSON(w io.Writer, steps plan.Plan) error {
	type jsonStep struct {
		Directive string   `json:"directive"`
		Lines     []string `json:"lines"`
	}
	out := make([]jsonStep, 0, len(steps))
	for _, s := range steps {
		out = append(out, jsonStep{Directive: string(s.Directive), Lines: s.Lines})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
