package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewChecksCmd creates the checks command.
func NewChecksCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the registered checks",
		Long: `List the registered checks.

Shows every check the current configuration would run: built-ins with
overrides applied plus config-declared pattern checks, in scheduling
order (execution tier, then ID).`,
		Example: `  bulwark checks
  bulwark checks --category security
  bulwark checks --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			catalog, err := buildCatalog(app.Config)
			if err != nil {
				return ErrConfig("failed to assemble checks", err)
			}

			descs := make([]check.Descriptor, 0, len(catalog))
			for _, c := range catalog {
				d := c.Descriptor()
				if category != "" && d.Category.String() != category {
					continue
				}
				descs = append(descs, d)
			}

			sort.Slice(descs, func(i, j int) bool {
				if descs[i].Priority != descs[j].Priority {
					return descs[i].Priority < descs[j].Priority
				}
				return descs[i].ID < descs[j].ID
			})

			view := &tui.ChecksView{}
			for _, d := range descs {
				view.Checks = append(view.Checks, checkInfoView(d))
			}

			return app.Presenter.RenderChecks(view)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")

	return cmd
}

// checkInfoView converts a descriptor into its display form.
func checkInfoView(d check.Descriptor) tui.CheckInfoView {
	info := tui.CheckInfoView{
		ID:       d.ID,
		Category: d.Category.String(),
		Family:   d.Family,
		Priority: d.Priority.String(),
		Blocking: d.Blocking.String(),
		Timeout:  d.Timeout,
	}

	if d.Matcher != nil && len(d.Matcher.Phases) > 0 {
		for _, p := range d.Matcher.Phases {
			info.Phases = append(info.Phases, p.String())
		}
	} else {
		info.Phases = []string{"pre", "post"}
	}

	if d.Matcher != nil && d.Matcher.Tools != nil {
		info.Tools = d.Matcher.Tools.String()
	}

	return info
}
