// Package cmd is the evmutil command line: offline codecs for bridge messages and proxy calls,
// and a router that replays bridge messages against the configured tables.
package cmd

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName   = "evmutil"
	envPrefix = "EVMUTIL"

	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

// NewRootCmd creates the root command. Flags can also be set through EVMUTIL_ variables,
// e.g. --log-level through EVMUTIL_LOG_LEVEL.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Bridge message utilities for the EVM bridge contract",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return v.BindPFlags(cmd.Flags())
		},
	}
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "pretty", "log format (json, pretty)")

	rootCmd.AddCommand(
		NewDecodeCmd(v),
		NewEnvelopeCmd(v),
		NewEncodeCmd(v),
		NewPredictCmd(),
		NewRouteCmd(v),
	)
	return rootCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode output")
	}
	cmd.Println(string(out))
	return nil
}

func printHex(cmd *cobra.Command, b []byte) {
	cmd.Println(hexutil.Encode(b))
}

func decodeHexArg(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid hex %q", s)
	}
	return b, nil
}
