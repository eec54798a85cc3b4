package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"codelens/internal/graph"
	"codelens/internal/metrics"
	"codelens/internal/render"
	"codelens/internal/report"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a report file the way the upload endpoint does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.loadReport(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d classes, %d inheritance entries, %d system metrics)\n",
				r.ProjectName, len(r.Classes), len(r.Inheritance), len(r.SystemMetrics))
			return nil
		},
	}
}

func newLevelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "levels <file>",
		Short: "Print inheritance nodes with their hierarchy level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.loadReport(args[0])
			if err != nil {
				return err
			}
			g := graph.BuildInheritance(r)
			nodes := append([]graph.Node(nil), g.Nodes...)
			sort.SliceStable(nodes, func(i, j int) bool {
				if nodes[i].Level != nodes[j].Level {
					return nodes[i].Level < nodes[j].Level
				}
				return nodes[i].ID < nodes[j].ID
			})

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LEVEL\tNODE\tKIND\tRISK")
			for _, n := range nodes {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.Level, n.ID, n.Kind, graph.Bucket(n.Risk))
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		class  string
		view   string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a graph view as json, dot or mermaid",
		Long: `Without --class the inheritance graph is exported. With --class the
class dependency graph is exported, or the usage graph when --view usage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			r, err := opts.loadReport(args[0])
			if err != nil {
				return err
			}
			g, v, err := graphFor(r, class, view)
			if err != nil {
				return err
			}
			engine, err := render.NewEngine(nil, 1)
			if err != nil {
				return err
			}
			out, err := render.Export(engine.Render(cmd.Context(), v, g), f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, dot or mermaid")
	cmd.Flags().StringVar(&class, "class", "", "class id or name for a class graph")
	cmd.Flags().StringVar(&view, "view", string(render.ViewDependencies), "class graph: dependencies or usage")
	return cmd
}

func graphFor(r *report.Report, class, view string) (*graph.Graph, render.View, error) {
	if class == "" {
		return graph.BuildInheritance(r), render.ViewInheritance, nil
	}
	c, ok := r.Class(class)
	if !ok {
		return nil, "", errors.Newf("class %q not found", class)
	}
	switch render.View(view) {
	case render.ViewUsage:
		return graph.BuildClassUsage(c), render.ViewUsage, nil
	case render.ViewDependencies, "":
		return graph.BuildClassDependencies(c), render.ViewDependencies, nil
	default:
		return nil, "", errors.Newf("unknown class view %q", view)
	}
}

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	var (
		class string
		view  string
	)
	cmd := &cobra.Command{
		Use:   "metrics <file>",
		Short: "Print a class metric view or a system metric view as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.loadReport(args[0])
			if err != nil {
				return err
			}
			var out any
			if class != "" {
				c, ok := r.Class(class)
				if !ok {
					return errors.Newf("class %q not found", class)
				}
				out = metrics.ClassView(c)
			} else {
				v, ok := metrics.ParseSystemView(view)
				if !ok {
					return errors.Newf("unknown view %q (want quality, complexity, visibility, overview or risk)", view)
				}
				out = metrics.SystemView(r, v)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "class id or name")
	cmd.Flags().StringVar(&view, "view", string(metrics.ViewQuality), "system view: quality, complexity, visibility, overview or risk")
	return cmd
}
