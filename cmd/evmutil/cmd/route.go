package cmd

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkg.world.dev/world-engine/evmutil"
	"pkg.world.dev/world-engine/evmutil/action"
	"pkg.world.dev/world-engine/evmutil/telemetry"
	"pkg.world.dev/world-engine/evmutil/units"
)

const flagCaller = "caller"

// printSink prints every outbound action instead of sending it.
type printSink struct {
	cmd *cobra.Command
}

func (s printSink) Send(_ context.Context, actions []action.Action) error {
	for _, a := range actions {
		if err := printJSON(s.cmd, a); err != nil {
			return err
		}
	}
	return nil
}

func NewRouteCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [hex envelope]",
		Short: "Route a bridge message against the configured tables and print the resulting actions",
		Long: "Route loads the store selected by EVMUTIL_STORE and handles the message as the bridge " +
			"contract would. Outbound actions are printed, not sent.",
		Example: fmt.Sprintf("EVMUTIL_STORE=redis %s route 0x00... --caller evm.xsat", appName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := decodeHexArg(args[0])
			if err != nil {
				return err
			}
			caller, err := units.ParseAccount(v.GetString(flagCaller))
			if err != nil {
				return err
			}

			tel, err := telemetry.New(telemetry.Options{
				ServiceName: appName,
				LogLevel:    v.GetString(flagLogLevel),
				LogFormat:   telemetry.ParseLogFormat(v.GetString(flagLogFormat)),
				Output:      cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := tel.Shutdown(context.Background()); err != nil {
					tel.Logger.Warn().Err(err).Msg("failed to shut down telemetry")
				}
			}()
			logger := tel.GetLogger("cli")

			cfg, err := evmutil.LoadConfig()
			if err != nil {
				return err
			}
			backend, closeBackend, err := cfg.OpenBackend()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeBackend(); err != nil {
					logger.Warn().Err(err).Msg("failed to close store")
				}
			}()

			contract := evmutil.New(cfg.SelfAccount(), backend, backend, printSink{cmd: cmd},
				evmutil.WithLogger(tel.GetLogger("evmutil")),
				evmutil.WithTracer(tel.Tracer),
			)
			if err := contract.OnBridgeMessage(cmd.Context(), caller, raw); err != nil {
				return eris.Wrap(err, "bridge message rejected")
			}
			logger.Info().Str("self", contract.Self().String()).Msg("bridge message routed")
			return nil
		},
	}
	cmd.Flags().String(flagCaller, "evm.xsat", "native account delivering the message")
	return cmd
}
