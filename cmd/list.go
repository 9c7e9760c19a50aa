package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sites in the host configuration store",
	RunE: func(cmd *cobra.Command, args []string) error {
		mine, _ := cmd.Flags().GetBool("mine")

		cfg := loadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := newLogger(cfg)
		ctrl, release, err := buildController(cfg, logger)
		if err != nil {
			return err
		}
		defer release()

		sites, err := ctrl.ListSites(mine)
		if err != nil {
			return fmt.Errorf("failed to list sites: %v", err)
		}

		if len(sites) == 0 {
			fmt.Println("No sites found.")
			return nil
		}

		for _, s := range sites {
			pool := s.PoolName
			if pool == "" {
				pool = "(default pool)"
			}
			fmt.Printf("  %d  %s  %s  %s  %s\n", s.ID, s.Name, s.Binding, pool, s.PhysicalPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("mine", false, "Only show sites whose pool carries this tool's marker")
}
