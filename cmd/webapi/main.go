package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/NexaProfitLabs/platform/internal/webapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagListenAddr        = "listen-addr"
	flagBackendAddr       = "backend-addr"
	flagBackendToken      = "backend-token"
	flagBackendTimeout    = "backend-timeout"
	flagAllowedOrigins    = "allowed-origins"
	flagJWTSigningKey     = "jwt-signing-key"
	flagJWTIssuer         = "jwt-issuer"
	flagJWTCookieName     = "jwt-cookie-name"
	flagFlowCookieName    = "flow-cookie-name"
	flagSessionStore      = "session-store"
	flagRedisAddr         = "redis-addr"
	flagRedisPassword     = "redis-password"
	flagInactivityTimeout = "inactivity-timeout"
	flagWizardSettleDelay = "wizard-settle-delay"
	envPrefix             = "WEBAPI"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "webapi: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := webapi.Config{}
	cmd := &cobra.Command{
		Use:           "webapi",
		Short:         "App gateway for the investment platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, &cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return webapi.Run(ctx, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, "", "HTTP listen address (required)")
	cmd.Flags().String(flagBackendAddr, "", "investd base URL (required)")
	cmd.Flags().String(flagBackendToken, "", "bearer token for investd (required)")
	cmd.Flags().Duration(flagBackendTimeout, 0, "backend request timeout (e.g. 10s)")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated list of allowed CORS origins (required)")
	cmd.Flags().String(flagJWTSigningKey, "", "TAuth JWT signing key (required)")
	cmd.Flags().String(flagJWTIssuer, "", "expected JWT issuer")
	cmd.Flags().String(flagJWTCookieName, "", "JWT cookie name")
	cmd.Flags().String(flagFlowCookieName, "", "anonymous flow session cookie name")
	cmd.Flags().String(flagSessionStore, "", "flow session store backend: memory or redis")
	cmd.Flags().String(flagRedisAddr, "", "redis address for the redis session store")
	cmd.Flags().String(flagRedisPassword, "", "redis password")
	cmd.Flags().Duration(flagInactivityTimeout, 0, "idle duration before forced navigation home")
	cmd.Flags().Duration(flagWizardSettleDelay, 0, "delay before a closed wizard's state clears")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *webapi.Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flagNames := []string{
		flagListenAddr, flagBackendAddr, flagBackendToken, flagBackendTimeout,
		flagAllowedOrigins, flagJWTSigningKey, flagJWTIssuer, flagJWTCookieName,
		flagFlowCookieName, flagSessionStore, flagRedisAddr, flagRedisPassword,
		flagInactivityTimeout, flagWizardSettleDelay,
	}
	for _, flagName := range flagNames {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	if !v.IsSet(flagListenAddr) {
		return fmt.Errorf("%s is required", flagListenAddr)
	}
	if !v.IsSet(flagBackendAddr) {
		return fmt.Errorf("%s is required", flagBackendAddr)
	}
	if !v.IsSet(flagBackendToken) {
		return fmt.Errorf("%s is required", flagBackendToken)
	}
	if !v.IsSet(flagAllowedOrigins) {
		return fmt.Errorf("%s is required", flagAllowedOrigins)
	}
	if !v.IsSet(flagJWTSigningKey) {
		return fmt.Errorf("%s is required", flagJWTSigningKey)
	}

	cfg.ListenAddr = strings.TrimSpace(v.GetString(flagListenAddr))
	cfg.BackendAddress = strings.TrimSpace(v.GetString(flagBackendAddr))
	cfg.BackendToken = v.GetString(flagBackendToken)
	cfg.BackendTimeout = v.GetDuration(flagBackendTimeout)
	cfg.AllowedOrigins = webapi.ParseAllowedOrigins(v.GetString(flagAllowedOrigins))
	cfg.SessionSigningKey = v.GetString(flagJWTSigningKey)
	cfg.SessionIssuer = strings.TrimSpace(v.GetString(flagJWTIssuer))
	cfg.SessionCookieName = strings.TrimSpace(v.GetString(flagJWTCookieName))
	cfg.FlowCookieName = strings.TrimSpace(v.GetString(flagFlowCookieName))
	cfg.SessionStore = strings.TrimSpace(v.GetString(flagSessionStore))
	cfg.RedisAddress = strings.TrimSpace(v.GetString(flagRedisAddr))
	cfg.RedisPassword = v.GetString(flagRedisPassword)
	cfg.InactivityTimeout = v.GetDuration(flagInactivityTimeout)
	cfg.WizardSettleDelay = v.GetDuration(flagWizardSettleDelay)

	return cfg.Validate()
}
