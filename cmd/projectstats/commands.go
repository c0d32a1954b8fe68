package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/export"
	"github.com/yectos/projects-api/internal/mapper"
	"github.com/yectos/projects-api/internal/stats"
	"gopkg.in/yaml.v3"
)

// filterFlags are shared by every command that narrows the project set
type filterFlags struct {
	search     string
	statuses   []string
	tags       []string
	priorities []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "case-insensitive match on name, client or description")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "keep projects with any of these statuses")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "keep projects carrying any of these tags")
	cmd.Flags().StringSliceVar(&f.priorities, "priority", nil, "keep projects with any of these priorities")
}

func (f *filterFlags) filter() (stats.Filter, error) {
	out := stats.Filter{Search: strings.TrimSpace(f.search), Tags: f.tags}
	for _, s := range f.statuses {
		status := domain.ProjectStatus(strings.TrimSpace(s))
		if !status.IsValid() {
			return stats.Filter{}, fmt.Errorf("invalid status %q", s)
		}
		out.Statuses = append(out.Statuses, status)
	}
	for _, p := range f.priorities {
		priority := domain.ProjectPriority(strings.TrimSpace(p))
		if !priority.IsValid() {
			return stats.Filter{}, fmt.Errorf("invalid priority %q", p)
		}
		out.Priorities = append(out.Priorities, priority)
	}
	return out, nil
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "projectstats",
		Short:         "Offline statistics over exported projects",
		Long:          "Reads a JSON or YAML document produced by the projects export endpoint or the nightly archive.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newStatsCmd(), newListCmd())
	return root
}

func newStatsCmd() *cobra.Command {
	var (
		flags  filterFlags
		output string
		charts bool
	)
	cmd := &cobra.Command{
		Use:   "stats <export-file>",
		Short: "Print dashboard statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(output)
			if err != nil {
				return err
			}
			projects, err := loadProjects(args[0], &flags)
			if err != nil {
				return err
			}

			var result interface{} = stats.ComputeDashboardStats(projects)
			if charts {
				result = struct {
					Stats  domain.DashboardStats  `json:"stats" yaml:"stats"`
					Charts domain.DashboardCharts `json:"charts" yaml:"charts"`
				}{
					Stats: stats.ComputeDashboardStats(projects),
					Charts: domain.DashboardCharts{
						StatusDistribution: stats.StatusDistribution(projects),
						MonthlyRevenue:     stats.MonthlyRevenue(projects),
						RecentProjects:     mapper.ToProjectDTOs(stats.RecentProjects(projects)),
					},
				}
			}
			return write(cmd.OutOrStdout(), format, result)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&charts, "charts", false, "include chart series")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		flags  filterFlags
		sortBy string
		order  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "list <export-file>",
		Short: "List projects with derived status and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := stats.ParseSortField(sortBy)
			if err != nil {
				return err
			}
			dir, err := stats.ParseSortDirection(order)
			if err != nil {
				return err
			}
			projects, err := loadProjects(args[0], &flags)
			if err != nil {
				return err
			}
			dtos := mapper.ToProjectDTOs(stats.SortProjects(projects, field, dir))

			if output == "table" {
				return writeTable(cmd.OutOrStdout(), dtos)
			}
			format, err := export.ParseFormat(output)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, dtos)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", string(stats.SortByCreatedAt), "sort field")
	cmd.Flags().StringVar(&order, "order", string(stats.SortDesc), "sort order: asc or desc")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func loadProjects(path string, flags *filterFlags) ([]domain.Project, error) {
	filter, err := flags.filter()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	doc, err := export.Decode(f, export.FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	projects, err := doc.DomainProjects()
	if err != nil {
		return nil, err
	}
	return stats.FilterProjects(projects, filter), nil
}

func write(w io.Writer, format export.Format, v interface{}) error {
	if format == export.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, projects []domain.ProjectDTO) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCLIENT\tSTATUS\tPROGRESS\tTOTAL\tPAID\tPENDING")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%.2f\t%.2f\t%.2f\n",
			p.Name, p.Client, p.Status, p.Progress, p.TotalCost, p.AmountPaid, p.PendingAmount)
	}
	return tw.Flush()
}
