package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dronir/ILRS-TLE/pkg/catalog"
	"github.com/dronir/ILRS-TLE/pkg/client"
	"github.com/dronir/ILRS-TLE/pkg/config"
	"github.com/dronir/ILRS-TLE/pkg/logging"
	"github.com/dronir/ILRS-TLE/pkg/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		configPath string
		pretty     bool
	)

	rootCmd := &cobra.Command{
		Use:           "ilrs-tle",
		Short:         "Download the latest TLEs of active ILRS satellites from Space-Track",
		Long:          "ilrs-tle resolves the active ILRS satellites from the ILRS mission listing, logs in to Space-Track and writes the latest element sets of every configured list to <output_dir>/<list>.txt.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if skip, _ := cmd.Flags().GetBool("skip-catalog"); skip {
				v.Set("catalog.enabled", false)
			}
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			logging.Setup(logging.Config{
				Level:  logging.LevelForDebug(cfg.DebugLevel),
				Pretty: pretty,
				Output: cmd.ErrOrStderr(),
			})
			return runFetch(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to the configuration file (TOML, YAML or JSON)")
	flags.BoolVar(&pretty, "pretty", false, "human-readable log output")
	flags.String("output-dir", ".", "directory receiving <list>.txt files")
	flags.Int("debug-level", 0, "log verbosity: 0 failures only, 1 progress, 2 tracing")
	flags.String("redis-addr", "", "also store records in Redis at this address")
	flags.String("pushgateway", "", "push job metrics to this Prometheus Pushgateway")
	flags.Bool("skip-catalog", false, "do not resolve the ILRS catalog list")

	_ = v.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = v.BindPFlag("debug_level", flags.Lookup("debug-level"))
	_ = v.BindPFlag("redis.addr", flags.Lookup("redis-addr"))
	_ = v.BindPFlag("metrics.pushgateway_url", flags.Lookup("pushgateway"))

	rootCmd.AddCommand(
		newCatalogCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// runFetch performs one full fetch cycle and pushes metrics, if configured,
// whatever the outcome.
func runFetch(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := wireApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	runErr := app.retriever.FetchAll(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			log.Warn().Err(err).Msg("Metrics push failed")
		}
	}

	return runErr
}

func newCatalogCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the catalog numbers of the active ILRS satellites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(client.Config{UserAgent: "ILRS-TLE/" + version, Timeout: timeout})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ids, err := catalog.NewILRSSource(c, url).FetchActiveIdentifiers(ctx)
			if err != nil {
				return err
			}

			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", catalog.DefaultURL, "ILRS current missions page")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ilrs-tle %s\n", version)
		},
	}
}
