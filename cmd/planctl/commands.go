package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/neexbeast/tripplanner/internal/app"
	"github.com/neexbeast/tripplanner/internal/catalog"
	"github.com/neexbeast/tripplanner/internal/config"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/geocode"
	"github.com/neexbeast/tripplanner/internal/plan"
	"github.com/neexbeast/tripplanner/internal/weather"
)

// composer is the part of plan.Composer the CLI uses.
type composer interface {
	Compose(ctx context.Context, req plan.Request) (*plan.TravelPlan, error)
}

// composerFactory builds a composer from the loaded configuration.
type composerFactory func(ctx context.Context, cfg config.Config, log *slog.Logger) (composer, func() error, error)

func defaultComposer(ctx context.Context, cfg config.Config, log *slog.Logger) (composer, func() error, error) {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a.Composer, a.Close, nil
}

type globalOptions struct {
	envFile  string
	logLevel string
}

func (o *globalOptions) setup() (config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = strings.ToLower(o.logLevel)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	return cfg, log, nil
}

func (o *globalOptions) loadCatalog() (*catalog.Catalog, error) {
	cfg, _, err := o.setup()
	if err != nil {
		return nil, err
	}
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Default()
}

func rootCmd(newComposer composerFactory) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "planctl",
		Short:         "Compose travel plans from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load if present")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		composeCmd(opts, newComposer),
		variantsCmd(),
		matchCmd(opts),
		recommendCmd(opts),
	)

	return cmd
}

func composeCmd(opts *globalOptions, newComposer composerFactory) *cobra.Command {
	var (
		days       int
		style      string
		start, end string
		lat, lon   float64
		multiplier float64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "compose CITY",
		Short: "Compose a plan for CITY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := plan.Request{City: args[0], Days: days, Style: style}

			var err error
			if req.Start, err = parseDateFlag("start", start); err != nil {
				return err
			}
			if req.End, err = parseDateFlag("end", end); err != nil {
				return err
			}
			// A lone --lat or --lon is ignored.
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
				c := geo.Coordinates{Latitude: lat, Longitude: lon}
				if !c.Valid() {
					return fmt.Errorf("invalid coordinates %s", c)
				}
				req.Coordinates = &c
			}
			if cmd.Flags().Changed("multiplier") {
				if multiplier <= 0 {
					return fmt.Errorf("invalid --multiplier %v", multiplier)
				}
				req.CostMultiplier = &multiplier
			}

			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			c, closeFn, err := newComposer(ctx, cfg, log)
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer func() { _ = closeFn() }()
			}

			p, err := c.Compose(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 3, "Trip length in days")
	cmd.Flags().StringVarP(&style, "style", "s", string(cost.Standard), "Travel style (Economy, Standard, Comfort)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude; skips geocoding together with --lon")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "Cost multiplier override")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")

	return cmd
}

func parseDateFlag(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(weather.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q, want YYYY-MM-DD", name, s)
	}
	return &t, nil
}

func printPlan(w io.Writer, p *plan.TravelPlan) {
	q := p.Query
	fmt.Fprintf(w, "%s", q.City)
	if q.Country != "" {
		fmt.Fprintf(w, ", %s", q.Country)
	}
	fmt.Fprintf(w, " (%s)\n", p.Coordinates)
	fmt.Fprintf(w, "Dates:  %s (%d days)\n", q.DateRange, q.Days)
	fmt.Fprintf(w, "Style:  %s x%.2f\n", q.Style, q.CostMultiplier)
	fmt.Fprintf(w, "Cost:   %.0f %s", p.Cost.Total, p.Cost.TargetCurrency)
	if p.Cost.Currency != p.Cost.TargetCurrency {
		fmt.Fprintf(w, " (%.2f %s)", p.Cost.TotalLocal, p.Cost.Currency)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "\nWeather:")
	if p.Weather.Forecast == nil {
		fmt.Fprintf(w, "  %s\n", p.Weather.Message)
	} else {
		fc := p.Weather.Forecast
		if fc.Current != nil {
			fmt.Fprintf(w, "  now %s %.0f°C %s\n", fc.Current.Icon, fc.Current.Temperature, fc.Current.Description)
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range fc.Daily {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", d.Date, d.Icon, tempRange(d), d.Description)
		}
		_ = tw.Flush()
	}

	fmt.Fprintf(w, "\nAttractions (%s):\n", p.AttractionsStatus)
	for i, a := range p.Attractions {
		fmt.Fprintf(w, "  %2d. %s", i+1, a.Name)
		if len(a.Categories) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(a.Categories, ", "))
		}
		if a.DistanceKM != nil {
			fmt.Fprintf(w, " %.1f km", *a.DistanceKM)
		}
		fmt.Fprintln(w)
	}
}

func tempRange(d weather.Day) string {
	if d.TemperatureMin == nil || d.TemperatureMax == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f..%.0f°C", *d.TemperatureMin, *d.TemperatureMax)
}

func variantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants CITY",
		Short: "Print the geocoding query variants tried for CITY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range geocode.Variants(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func matchCmd(opts *globalOptions) *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "match CITY",
		Short: "Match CITY against the destination catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			d, score, ok := cat.MatchWithThreshold(args[0], threshold)
			if !ok {
				return fmt.Errorf("%q is not in the catalog (best score %d)", args[0], score)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s (score %d, multiplier %.2f, %s)\n",
				d.Name, d.Country, score, d.CostMultiplier, d.Currency)
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", catalog.DefaultThreshold, "Minimum similarity 0-100")
	return cmd
}

func recommendCmd(opts *globalOptions) *cobra.Command {
	var (
		tags  []string
		style string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a catalog destination by tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cost.ParseStyle(style)
			if err != nil {
				return err
			}
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			d, ok := cat.Recommend(tags, st, nil)
			if !ok {
				return fmt.Errorf("no destination matches tags %s", strings.Join(tags, ","))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s [%s]\n", d.Name, d.Country, strings.Join(d.Tags, ", "))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Vibe tags, comma separated")
	cmd.Flags().StringVarP(&style, "style", "s", string(cost.Standard), "Travel style")
	_ = cmd.MarkFlagRequired("tags")
	return cmd
}
