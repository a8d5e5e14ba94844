package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"

	"msneuron/internal/logger"
	"msneuron/pkg/config"
	"msneuron/pkg/session"
	"msneuron/pkg/source"
	"msneuron/pkg/visualization"
)

type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "msneuron",
		Short:         "Inspect segmented neurons from a calcium-imaging session",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "msneuron.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	root.AddCommand(
		a.summaryCommand(),
		a.distancesCommand(),
		a.neighborsCommand(),
		a.renderCommand(),
		a.initConfigCommand(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	return logger.Configure(level, cfg.Logging.File)
}

func (a *app) openSession(path string) (*session.Session, error) {
	rec, err := source.Load(path)
	if err != nil {
		return nil, err
	}

	var opts []session.Option
	if a.cfg.Labels.LegacyToggle {
		opts = append(opts, session.WithLegacyToggle())
	}
	s, err := session.New(rec, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Logger.Info("Loaded session", "file", path, "neurons", s.NumNeurons, "session", s.ID)
	return s, nil
}

func (a *app) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <session.yaml>",
		Short: "List neurons with their label, center and peak frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func writeSummary(w io.Writer, s *session.Session) {
	sum := s.Summary()
	fmt.Fprintf(w, "Neurons: %d (good %d, bad %d)\n", sum.Neurons, sum.Good, sum.Bad)
	for _, n := range s.Neurons() {
		fmt.Fprintf(w, "%4d  %-4s  center=%s  maxFilt=%d  maxRaw=%d  spikes=%d\n",
			n.ID(), n.Label(), n.Center(), n.MaxFiltFrame(), n.MaxRawFrame(), n.SpikeCount())
	}
}

func (a *app) distancesCommand() *cobra.Command {
	var maxDist float64

	cmd := &cobra.Command{
		Use:   "distances <session.yaml>",
		Short: "Print the centroid distance map and close pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-distance") {
				maxDist = a.cfg.Analysis.MergeDistance
			}
			writeDistances(cmd.OutOrStdout(), s, maxDist)
			return nil
		},
	}
	cmd.Flags().Float64Var(&maxDist, "max-distance", 0, "Report pairs closer than this many pixels (default from config)")
	return cmd
}

func writeDistances(w io.Writer, s *session.Session, maxDist float64) {
	if !s.HasNeuron() {
		fmt.Fprintln(w, "No neurons")
		return
	}
	fmt.Fprintf(w, "%.3f\n", mat.Formatted(s.DistanceMap(), mat.Squeeze()))

	pairs := s.Pairs(maxDist)
	fmt.Fprintf(w, "Pairs within %.2f px: %d\n", maxDist, len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(w, "%4d %4d  %.3f\n", p.A, p.B, p.Distance)
	}
}

func (a *app) neighborsCommand() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "neighbors <session.yaml>",
		Short: "List the nearest neighbours of every neuron",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("k") {
				k = a.cfg.Analysis.Neighbors
			}
			return writeNeighbors(cmd.OutOrStdout(), s, k)
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "Number of neighbours per neuron (default from config)")
	return cmd
}

func writeNeighbors(w io.Writer, s *session.Session, k int) error {
	for _, n := range s.Neurons() {
		if !n.Center().Defined() {
			fmt.Fprintf(w, "%4d  center undefined\n", n.ID())
			continue
		}
		nbs, err := s.Nearest(n.ID(), k)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%4d ", n.ID())
		for _, nb := range nbs {
			fmt.Fprintf(w, " %d(%.2f)", nb.ID, nb.Distance)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (a *app) renderCommand() *cobra.Command {
	var goodOnly bool

	cmd := &cobra.Command{
		Use:   "render <session.yaml>",
		Short: "Write footprint images and the distance heat map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if !s.HasNeuron() {
				return fmt.Errorf("%s: session has no neurons", args[0])
			}

			outputDir := a.cfg.Render.OutputDir
			viewer := visualization.NewViewer(s.ROIs.Height, s.ROIs.Width, a.cfg.Render.JPEGQuality)
			if err := viewer.Attach(s.Neurons()...); err != nil {
				return err
			}
			if goodOnly {
				s.Group().Bad().SetVisible(false)
			}
			if err := viewer.SaveFootprintSequence(outputDir); err != nil {
				return fmt.Errorf("failed to save footprints: %w", err)
			}

			heatMap := filepath.Join(outputDir, "distance.png")
			size := vg.Length(a.cfg.Render.HeatMapSize) * vg.Inch
			if err := visualization.SaveDistanceHeatMap(s.DistanceMap(), heatMap, size); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d footprints to %s\n", len(viewer.Items()), outputDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&goodOnly, "good-only", false, "Only draw neurons labelled Good in the overlay")
	return cmd
}

func (a *app) initConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
}
