package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/replwatch/replwatch/internal/config"
	"github.com/replwatch/replwatch/internal/logging"
	"github.com/replwatch/replwatch/internal/metrics"
	"github.com/replwatch/replwatch/internal/models"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "replwatch",
	Short:   "replwatch - service replication monitoring",
	Long:    `replwatch compares the healthy backends registered in service discovery against the instance counts the orchestrator declares, and alerts when namespaces fall short.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		runCheck(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("replwatch %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "Print the namespace universe from the config tree",
	Run: func(cmd *cobra.Command, args []string) {
		runNamespaces(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to a replwatch config file")
	flags.String("soa-dir", "", "root of the per-service configuration tree")
	flags.String("cluster", "", "cluster whose instance declarations to read")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console, auto)")

	checkFlags := rootCmd.Flags()
	checkFlags.String("declarations", "", "declaration source: soa or nomad")
	checkFlags.String("nomad-addr", "", "Nomad API address")
	checkFlags.String("discovery", "", "discovery backend: synapse or consul")
	checkFlags.String("synapse-addr", "", "Synapse HAProxy stats host:port")
	checkFlags.String("consul-addr", "", "Consul agent address")
	checkFlags.IntP("warn", "w", 0, "warning threshold percentage of available to expected instances")
	checkFlags.IntP("crit", "c", 0, "critical threshold percentage of available to expected instances")
	checkFlags.String("transport-url", "", "alert transport endpoint")
	checkFlags.Bool("dry-run", false, "log alert events instead of sending them")
	checkFlags.Int("workers", 0, "bound on concurrent namespace checks")
	checkFlags.String("push-gateway", "", "Prometheus Pushgateway to receive run metrics")
	checkFlags.StringArray("namespace", nil, "restrict the check to specific service.namespace ids (repeatable)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(namespacesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings resolves configuration from defaults, file, env, and the
// flags actually set on the command line, then validates the result.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigPath(path)
	}
	settings, err := loader.Load()
	if err != nil {
		return nil, err
	}

	applyString(cmd, "soa-dir", &settings.SOADir)
	applyString(cmd, "cluster", &settings.Cluster)
	applyString(cmd, "declarations", &settings.DeclarationSource)
	applyString(cmd, "nomad-addr", &settings.NomadAddr)
	applyString(cmd, "discovery", &settings.DiscoveryBackend)
	applyString(cmd, "synapse-addr", &settings.SynapseAddr)
	applyString(cmd, "consul-addr", &settings.ConsulAddr)
	applyInt(cmd, "warn", &settings.WarnPct)
	applyInt(cmd, "crit", &settings.CritPct)
	applyString(cmd, "transport-url", &settings.TransportURL)
	applyBool(cmd, "dry-run", &settings.DryRun)
	applyInt(cmd, "workers", &settings.Workers)
	applyString(cmd, "push-gateway", &settings.PushGateway)
	applyString(cmd, "log-level", &settings.LogLevel)
	applyString(cmd, "log-format", &settings.LogFormat)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func applyString(cmd *cobra.Command, name string, target *string) {
	if cmd.Flags().Changed(name) {
		*target, _ = cmd.Flags().GetString(name)
	}
}

func applyInt(cmd *cobra.Command, name string, target *int) {
	if cmd.Flags().Changed(name) {
		*target, _ = cmd.Flags().GetInt(name)
	}
}

func applyBool(cmd *cobra.Command, name string, target *bool) {
	if cmd.Flags().Changed(name) {
		*target, _ = cmd.Flags().GetBool(name)
	}
}

func runCheck(cmd *cobra.Command) {
	// Baseline logger for early startup; re-initialized once settings
	// are known.
	logging.Init(logging.Config{Format: "auto", Level: "info", Component: "replwatch"})

	settings, err := loadSettings(cmd)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Format:    settings.LogFormat,
		Level:     settings.LogLevel,
		Component: "replwatch",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := config.NewStore(settings.SOADir, settings.Cluster)

	universe, _ := cmd.Flags().GetStringArray("namespace")
	if len(universe) == 0 {
		universe, err = store.ListNamespaces()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list the namespace universe")
		}
	}
	if len(universe) == 0 {
		log.Info().Msg("Namespace universe is empty; nothing to check")
		return
	}

	checker, err := buildChecker(settings, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble the checker")
	}

	outcomes, err := checker.Run(ctx, universe)
	if err != nil {
		log.Fatal().Err(err).Msg("Replication check failed")
	}
	summarize(outcomes)

	if settings.PushGateway != "" {
		if err := metrics.Get().Push(settings.PushGateway, "replwatch"); err != nil {
			log.Warn().Err(err).Msg("Failed to push run metrics")
		}
	}
}

// summarize logs the run's terminal-state tallies.
func summarize(outcomes []models.Outcome) {
	counts := make(map[models.OutcomeState]int)
	emitted, suppressed, failed := 0, 0, 0
	for _, outcome := range outcomes {
		counts[outcome.State]++
		if outcome.Emitted() {
			emitted++
		}
		if outcome.Suppressed {
			suppressed++
		}
		if outcome.EmitErr != nil {
			failed++
		}
	}
	event := log.Info().
		Int("total", len(outcomes)).
		Int("emitted", emitted).
		Int("suppressed", suppressed)
	for state, count := range counts {
		event = event.Int(string(state), count)
	}
	if failed > 0 {
		event = event.Int("deliveryFailures", failed)
	}
	event.Msg("Check outcomes")
}

func runNamespaces(cmd *cobra.Command) {
	logging.Init(logging.Config{Format: "auto", Level: "warn", Component: "replwatch"})

	// Only the config tree matters here; skip full check validation.
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigPath(path)
	}
	settings, err := loader.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	applyString(cmd, "soa-dir", &settings.SOADir)
	applyString(cmd, "cluster", &settings.Cluster)

	store := config.NewStore(settings.SOADir, settings.Cluster)
	universe, err := store.ListNamespaces()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list the namespace universe")
	}
	for _, name := range universe {
		fmt.Println(name)
	}
}
