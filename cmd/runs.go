package cmd

import (
	"fmt"

	"github.com/KaramelBytes/lipidflow-cli/internal/store"
	"github.com/KaramelBytes/lipidflow-cli/internal/utils"
	"github.com/spf13/cobra"
)

var runsJSON bool

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		runs, err := db.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs saved")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %s  %s → %s → %s (%s)\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Name,
				r.Columns.Start, r.Columns.Mid, r.Columns.End, r.Columns.Value)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		r, err := db.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if runsJSON {
			b, err := utils.PrettyJSON(r)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Printf("id: %s\n", r.ID)
		fmt.Printf("name: %s\n", r.Name)
		if r.InputPath != "" {
			fmt.Printf("input: %s\n", r.InputPath)
		}
		fmt.Printf("created: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("stages: %s → %s → %s\n", r.Columns.Start, r.Columns.Mid, r.Columns.End)
		fmt.Printf("value: %s\n", r.Columns.Value)
		for _, col := range r.Columns.Stages() {
			if v, ok := r.Thresholds[col]; ok {
				fmt.Printf("threshold[%s]: %.2f%%\n", col, v)
			}
		}
		g := r.Graph()
		fmt.Printf("nodes: %d, grouped flows: %d, flow records: %d\n", len(g.Nodes), len(r.Grouped), len(r.Flows))
		for _, fl := range r.Grouped {
			fmt.Printf("  %s → %s: %g\n", fl.SourceLabel, fl.TargetLabel, fl.Value)
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted run %s\n", args[0])
		return nil
	},
}

func openStore() (*store.DB, error) {
	c, err := loadedConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(c.DBPath)
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsShowCmd.Flags().BoolVar(&runsJSON, "json", false, "print the full run as JSON")
}
