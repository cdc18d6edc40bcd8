package message

import "pkg.world.dev/world-engine/evmutil/abi"

// Selectors of the calls bridged from the EVM, keyed by their ledger-side app type.
var (
	// claim(address,address)
	SelectorClaim = abi.SelectorFromAppType(0x42b3c021)
	// claim2(address,address,uint256)
	SelectorClaimWithDonation = abi.SelectorFromAppType(0xac2fd4fc)
	// deposit(address,uint256,address)
	SelectorDeposit = abi.SelectorFromAppType(0xdc4653f4)
	// withdraw(address,uint256,address)
	SelectorWithdraw = abi.SelectorFromAppType(0xec8d3269)
	// restake(address,address,uint256,address)
	SelectorRestake = abi.SelectorFromAppType(0x2b7d501d)

	// vdrclaim(address,address)
	SelectorValidatorClaim = abi.SelectorFromAppType(0xc16fb607)
	// creditclaim(address,address,address)
	SelectorCreditClaim = abi.SelectorFromAppType(0x3d7bb560)

	// claim(address,address,uint8)
	SelectorGasClaim = abi.SelectorFromAppType(0x136f93b4)
	// enfClaim(address)
	SelectorEnfClaim = abi.SelectorFromAppType(0x4380f533)
	// ramsClaim(address)
	SelectorRamsClaim = abi.SelectorFromAppType(0x031a7229)
)

// minLength returns the payload size of a selector followed by n words.
func minLength(words int) int {
	return abi.SelectorSize + words*abi.WordSize
}
