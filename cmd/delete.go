package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tankadesign/iis-site-manager/internal/hostsfile"
	"github.com/tankadesign/iis-site-manager/internal/site"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a site or an application pool",
}

var deleteSiteCmd = &cobra.Command{
	Use:   "site [id]",
	Short: "Delete a site by its store id",
	Long: `Delete a site by its numeric store id. Deleting an id that is no longer
present reports success. Host store faults are reported but do not fail the
command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id '%s'", args[0])
		}

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

		// Resolve the name before deleting so the hosts entry can be
		// cleaned up afterward.
		var name string
		if sites, err := ctrl.ListSites(false); err == nil {
			for _, s := range sites {
				if s.ID == id {
					name = s.Name
					break
				}
			}
		}

		res, err := ctrl.DeleteSite(id, progressPrinter(cfg.Verbose))
		if err != nil {
			return err
		}

		switch res.Outcome {
		case site.Deleted:
			if name != "" {
				hosts := hostsfile.New(cfg.HostsFile, cfg.DryRun, logger)
				if err := hosts.Remove(name); err != nil {
					logger.Warn("failed to remove hosts entry", "site", name, "error", err)
				}
			}
			fmt.Printf("Site %d deleted.\n", id)
		case site.NotFound:
			fmt.Printf("Site %d not found, nothing to delete.\n", id)
		case site.HostFault:
			presentHostFault("Error deleting site", res)
		}
		return nil
	},
}

var deletePoolCmd = &cobra.Command{
	Use:   "pool [name]",
	Short: "Delete an application pool by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

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

		res, err := ctrl.DeletePool(name, progressPrinter(cfg.Verbose))
		if err != nil {
			return err
		}

		switch res.Outcome {
		case site.Deleted:
			fmt.Printf("Application pool '%s' deleted.\n", name)
		case site.NotFound:
			fmt.Printf("Application pool '%s' not found, nothing to delete.\n", name)
		case site.HostFault:
			presentHostFault("Error deleting application pool", res)
		}
		return nil
	},
}

// progressPrinter is the CLI's progress sink: a single terminal tick.
func progressPrinter(verbose bool) site.ProgressFunc {
	return func(percent int) {
		if verbose {
			fmt.Printf("Progress: %d%%\n", percent)
		}
	}
}

// presentHostFault surfaces a contained host fault to the user without
// failing the surrounding workflow.
func presentHostFault(title string, res site.DeleteResult) {
	fmt.Fprintf(os.Stderr, "[warning] %s: %v\n", title, res.Detail)
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.AddCommand(deleteSiteCmd)
	deleteCmd.AddCommand(deletePoolCmd)
}
