package cmd

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkg.world.dev/world-engine/evmutil"
	"pkg.world.dev/world-engine/evmutil/calldata"
	"pkg.world.dev/world-engine/evmutil/planner"
	"pkg.world.dev/world-engine/evmutil/units"
)

const (
	flagGasSymbol      = "gas-symbol"
	flagBytecode       = "bytecode"
	flagImpl           = "impl"
	flagOwner          = "owner"
	flagEVMAccount     = "evm-account"
	flagToken          = "token"
	flagFee            = "fee"
	flagERC20Precision = "erc20-precision"
	flagNotBTC         = "not-btc"
	flagDeposits       = "validator-deposits"
)

func NewEncodeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode calls the bridge makes to its EVM proxies",
	}
	cmd.PersistentFlags().String(flagGasSymbol, "8,BTC", "native gas token symbol")
	cmd.AddCommand(
		newEncodeProxyCmd(v),
		newEncodeSetFeeCmd(v),
		newEncodeLockTimeCmd(),
		newEncodeUpgradeCmd(),
	)
	return cmd
}

func gasSymbol(v *viper.Viper) (units.Symbol, error) {
	return units.ParseSymbol(v.GetString(flagGasSymbol))
}

func newEncodeProxyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Encode the creation code of a stake helper proxy",
		Example: fmt.Sprintf("%s encode proxy --bytecode 0x6080... --impl 0x33... --token 0x22... "+
			"--fee \"0.00010000 BTC\" --erc20-precision 18", appName),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gas, err := gasSymbol(v)
			if err != nil {
				return err
			}
			code, err := decodeHexArg(v.GetString(flagBytecode))
			if err != nil {
				return err
			}
			impl, err := evmutil.ParseAddress(v.GetString(flagImpl))
			if err != nil {
				return eris.Wrap(err, flagImpl)
			}
			token, err := evmutil.ParseAddress(v.GetString(flagToken))
			if err != nil {
				return eris.Wrap(err, flagToken)
			}
			owner, err := units.ParseAccount(v.GetString(flagOwner))
			if err != nil {
				return err
			}
			evmAccount, err := units.ParseAccount(v.GetString(flagEVMAccount))
			if err != nil {
				return err
			}
			fee, err := units.ParseAsset(v.GetString(flagFee))
			if err != nil {
				return err
			}
			precision := v.GetUint(flagERC20Precision)
			if precision > 255 {
				return eris.Wrapf(units.ErrInvalidRate, "erc20 precision %d", precision)
			}

			out, err := calldata.EncodeProxyDeployment(calldata.ProxyDeployment{
				Bytecode:            code,
				Impl:                impl,
				Owner:               units.DefaultAddressSpace.ReservedFromAccount(owner),
				EVMAccount:          units.DefaultAddressSpace.ReservedFromAccount(evmAccount),
				ERC20:               token,
				Fee:                 fee,
				GasSymbol:           gas,
				ERC20Precision:      uint8(precision),
				NotBTC:              v.GetBool(flagNotBTC),
				IsValidatorDeposits: v.GetBool(flagDeposits),
			})
			if err != nil {
				return err
			}
			printHex(cmd, out)
			return nil
		},
	}
	cmd.Flags().String(flagBytecode, "", "proxy creation bytecode")
	cmd.Flags().String(flagImpl, "", "stake helper implementation address")
	cmd.Flags().String(flagToken, "", "ERC-20 token address")
	cmd.Flags().String(flagOwner, "evmutil.xsat", "native account owning the proxy")
	cmd.Flags().String(flagEVMAccount, "evm.xsat", "native account of the EVM runtime")
	cmd.Flags().String(flagFee, "0.00000000 BTC", "deposit fee in the gas token")
	cmd.Flags().Uint(flagERC20Precision, 18, "decimals of the ERC-20")
	cmd.Flags().Bool(flagNotBTC, false, "the proxy stakes something other than BTC")
	cmd.Flags().Bool(flagDeposits, false, "the proxy is a validator deposit proxy")
	return cmd
}

func newEncodeSetFeeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "setfee [fee]",
		Short:   "Encode setFee with the fee scaled to EVM units",
		Example: fmt.Sprintf("%s encode setfee \"0.00010000 BTC\"", appName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gas, err := gasSymbol(v)
			if err != nil {
				return err
			}
			fee, err := units.ParseAsset(args[0])
			if err != nil {
				return err
			}
			out, err := calldata.EncodeSetFee(fee, gas)
			if err != nil {
				return err
			}
			printHex(cmd, out)
			return nil
		},
	}
}

func newEncodeLockTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "locktime [seconds]",
		Short:   "Encode setLockTime",
		Example: fmt.Sprintf("%s encode locktime 86400", appName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lockTime, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return eris.Wrapf(err, "invalid lock time %q", args[0])
			}
			printHex(cmd, calldata.EncodeSetLockTime(lockTime))
			return nil
		},
	}
}

func newEncodeUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "upgrade [impl address]",
		Short:   "Encode upgradeToAndCall with empty call data",
		Example: fmt.Sprintf("%s encode upgrade 0x3333333333333333333333333333333333333333", appName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			impl, err := evmutil.ParseAddress(args[0])
			if err != nil {
				return err
			}
			printHex(cmd, calldata.EncodeUpgradeToAndCall(impl))
			return nil
		},
	}
}

func NewPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict [account] [nonce]",
		Short: "Print the address a deployment from the account's reserved address lands at",
		Example: fmt.Sprintf("%s predict evmutil.xsat 0\n"+
			"%s predict 0xbbbbbbbbbbbbbbbbbbbbbbbb56e4adc95b92a000 3", appName, appName),
		Args: cobra.ExactArgs(2), //nolint:mnd // account and nonce
		RunE: func(cmd *cobra.Command, args []string) error {
			deployer, err := evmutil.ParseAddress(args[0])
			if err != nil {
				account, accErr := units.ParseAccount(args[0])
				if accErr != nil {
					return eris.Errorf("%q is neither an EVM address nor an account", args[0])
				}
				deployer = units.DefaultAddressSpace.ReservedFromAccount(account)
			}
			nonce, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return eris.Wrapf(err, "invalid nonce %q", args[1])
			}
			cmd.Println(planner.PredictDeployedAddress(deployer, nonce).Hex())
			return nil
		},
	}
}
