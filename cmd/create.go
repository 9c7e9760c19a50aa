package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tankadesign/iis-site-manager/internal/hostsfile"
	"github.com/tankadesign/iis-site-manager/internal/site"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new site, optionally with a dedicated application pool",
	Long: `Create a new site in the host configuration store, bound to port 80 with
the site name as host header.

Examples:
  iis-site-manager create Contoso --install-folder /srv/contoso --site-pool
  iis-site-manager create Contoso --install-folder /srv/contoso --overwrite
  iis-site-manager create Contoso --install-folder /srv/contoso --hosts-entry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		installFolder, _ := cmd.Flags().GetString("install-folder")
		sitePool, _ := cmd.Flags().GetBool("site-pool")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		hostsEntry, _ := cmd.Flags().GetBool("hosts-entry")

		cfg := loadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.Verbose {
			cfg.PrintConfig()
		}

		logger := newLogger(cfg)
		ctrl, release, err := buildController(cfg, logger)
		if err != nil {
			return err
		}
		defer release()

		err = ctrl.Create(site.CreateOptions{
			Name:                name,
			InstallFolder:       installFolder,
			UseSiteSpecificPool: sitePool,
			DeleteIfExists:      overwrite,
		})
		if errors.Is(err, site.ErrSiteExists) {
			return fmt.Errorf("site '%s' already exists; choose another name or pass --overwrite", name)
		}
		if err != nil {
			return err
		}

		if hostsEntry {
			hosts := hostsfile.New(cfg.HostsFile, cfg.DryRun, logger)
			if err := hosts.Ensure(name); err != nil {
				return err
			}
		}

		fmt.Printf("Site '%s' created.\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().String("install-folder", "", "Folder the site's Website and Logs directories hang off (required)")
	createCmd.Flags().Bool("site-pool", false, "Create a dedicated application pool for the site")
	createCmd.Flags().Bool("overwrite", false, "Reclaim an existing site with the same name before creating")
	createCmd.Flags().Bool("hosts-entry", false, "Add a loopback hosts-file entry for the site name")
	createCmd.MarkFlagRequired("install-folder")
}
