package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkg.world.dev/world-engine/evmutil"
	"pkg.world.dev/world-engine/evmutil/message"
	"pkg.world.dev/world-engine/evmutil/units"
)

const (
	flagFamily    = "family"
	flagDelta     = "delta"
	flagReceiver  = "receiver"
	flagSender    = "sender"
	flagTimestamp = "timestamp"
)

type decodedMessage struct {
	Envelope message.BridgeMessage `json:"envelope"`
	AppType  string                `json:"app_type"`
	Op       string                `json:"op,omitempty"`
	Fields   message.Op            `json:"fields,omitempty"`
}

func NewDecodeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [hex envelope]",
		Short: "Decode a bridge message envelope and, with --family, its payload",
		Example: fmt.Sprintf("%s decode 0x00... --family endorser-stake --delta 10\n"+
			"%s decode 0x00... --family rewards", appName, appName),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := decodeHexArg(args[0])
			if err != nil {
				return err
			}
			msg, err := message.Unpack(raw)
			if err != nil {
				return err
			}
			sel, err := msg.Selector()
			if err != nil {
				return err
			}
			out := decodedMessage{Envelope: msg, AppType: fmt.Sprintf("0x%08x", sel.AppType())}

			if name := v.GetString(flagFamily); name != "" {
				family := message.ParseFamily(name)
				if family == message.FamilyUndefined {
					return eris.Errorf("unknown family %q", name)
				}
				delta := v.GetUint(flagDelta)
				if delta > units.MaxWordDecimals {
					return eris.Wrapf(units.ErrInvalidRate, "delta %d", delta)
				}
				op, err := message.NewDecoder(units.DefaultAddressSpace).Decode(family, msg.Data, uint8(delta))
				if err != nil {
					return err
				}
				out.Op = fmt.Sprintf("%T", op)
				out.Fields = op
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().String(flagFamily, "", "payload family (endorser-stake, rewards, gas-funds)")
	cmd.Flags().Uint(flagDelta, 0, "decimals between EVM and native amounts")
	return cmd
}

func NewEnvelopeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "envelope [hex payload]",
		Short:   "Wrap a payload in a version 0 bridge message envelope",
		Example: fmt.Sprintf("%s envelope 0xf45346dc... --sender 0x12... --receiver evmutil.xsat", appName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeHexArg(args[0])
			if err != nil {
				return err
			}
			receiver, err := units.ParseAccount(v.GetString(flagReceiver))
			if err != nil {
				return err
			}
			sender, err := evmutil.ParseAddress(v.GetString(flagSender))
			if err != nil {
				return err
			}
			raw, err := message.Pack(message.BridgeMessage{
				Receiver:  receiver,
				Sender:    sender,
				Timestamp: v.GetUint64(flagTimestamp),
				Data:      data,
			})
			if err != nil {
				return err
			}
			printHex(cmd, raw)
			return nil
		},
	}
	cmd.Flags().String(flagReceiver, "evmutil.xsat", "native account the message is addressed to")
	cmd.Flags().String(flagSender, "", "EVM address of the emitting contract")
	cmd.Flags().Uint64(flagTimestamp, 0, "timestamp in microseconds")
	return cmd
}
