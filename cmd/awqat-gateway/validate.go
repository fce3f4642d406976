package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"awqat-hq/gateway/pkg/cache"
	"awqat-hq/gateway/pkg/cli"
	"awqat-hq/gateway/pkg/config"
)

var validateOutput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the gateway configuration",
	Long: `Load the configuration exactly as "run" would (file, then environment,
then defaults) and report every problem found. Nothing is started.

Examples:
  # Validate environment-only configuration
  awqat-gateway validate

  # Validate a file
  awqat-gateway validate --config gateway.yaml

  # Machine-readable summary
  awqat-gateway validate --config gateway.yaml --output json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "text", "output format: text, json")
}

// configSummary is what validate reports for a valid configuration. It never
// includes credentials.
type configSummary struct {
	Listen        string  `json:"listen"`
	UpstreamURL   string  `json:"upstreamBaseUrl"`
	AllowedOrigin string  `json:"allowedOrigin"`
	CacheBackend  string  `json:"cacheBackend"`
	DailyTTL      string  `json:"dailyTtl"`
	MonthlyTTL    string  `json:"monthlyTtl"`
	LookupTTL     string  `json:"lookupTtl"`
	Timezone      string  `json:"timezone"`
	Keepalive     string  `json:"keepaliveSchedule,omitempty"`
	Metrics       bool    `json:"metricsEnabled"`
	Tracing       bool    `json:"tracingEnabled"`
	SampleRatio   float64 `json:"sampleRatio,omitempty"`
}

func (s configSummary) String() string {
	return fmt.Sprintf(`✓ Configuration valid
  listen:          %s
  upstream:        %s
  allowed origin:  %s
  cache backend:   %s
  daily ttl:       %s
  monthly ttl:     %s
  lookup ttl:      %s
  timezone:        %s`,
		s.Listen, s.UpstreamURL, s.AllowedOrigin, s.CacheBackend,
		s.DailyTTL, s.MonthlyTTL, s.LookupTTL, s.Timezone)
}

func summarize(cfg *config.Config) configSummary {
	policy := cache.PolicyFromConfig(cfg.Cache)
	return configSummary{
		Listen:        cfg.Server.ListenAddress(),
		UpstreamURL:   cfg.Upstream.BaseURL,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		CacheBackend:  cfg.Cache.Backend,
		DailyTTL:      policy.Daily.String(),
		MonthlyTTL:    policy.Monthly.String(),
		LookupTTL:     policy.Lookup.String(),
		Timezone:      cfg.Cache.Timezone,
		Keepalive:     cfg.Session.KeepaliveSchedule,
		Metrics:       cfg.Telemetry.Metrics.IsEnabled(),
		Tracing:       cfg.Telemetry.Tracing.Enabled,
		SampleRatio:   cfg.Telemetry.Tracing.SampleRatio,
	}
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateOutput)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.WrapConfigError(err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), summarize(cfg))
}
