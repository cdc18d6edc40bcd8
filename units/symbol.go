package units

import (
	"fmt"
	"strconv"
	"strings"

	eos "github.com/eoscanada/eos-go"
	"github.com/rotisserie/eris"
)

// Symbol is a native token symbol: a precision and an upper-case code.
type Symbol struct {
	Precision uint8  `json:"precision"`
	Code      string `json:"code"`
}

var (
	// BTC is the gas token of the native ledger.
	BTC = Symbol{Precision: 8, Code: "BTC"} //nolint:gochecknoglobals // constant value

	// XSAT is the staking token used by the XSAT deposit channel.
	XSAT = Symbol{Precision: 8, Code: "XSAT"} //nolint:gochecknoglobals // constant value
)

// ParseSymbol parses "precision,CODE", e.g. "8,BTC".
func ParseSymbol(s string) (Symbol, error) {
	sym, err := eos.StringToSymbol(s)
	if err != nil {
		return Symbol{}, eris.Wrapf(ErrInvalidSymbol, "%q: %v", s, err)
	}
	return Symbol{Precision: sym.Precision, Code: sym.Symbol}, nil
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

func (s Symbol) IsZero() bool {
	return s.Code == ""
}

// Asset is an amount of a native token expressed in the symbol's smallest unit.
type Asset struct {
	Amount int64  `json:"amount"`
	Symbol Symbol `json:"symbol"`
}

func NewAsset(amount uint64, s Symbol) Asset {
	return Asset{Amount: int64(amount), Symbol: s} //nolint:gosec // amounts are bounded by MaxNativeAmount
}

// ParseAsset parses the textual form "1.00000000 BTC". The precision is the number of
// fractional digits.
func ParseAsset(s string) (Asset, error) {
	amountStr, code, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return Asset{}, eris.Wrapf(ErrInvalidSymbol, "asset %q has no symbol", s)
	}
	whole, frac, _ := strings.Cut(amountStr, ".")
	sym, err := ParseSymbol(fmt.Sprintf("%d,%s", len(frac), code))
	if err != nil {
		return Asset{}, err
	}
	amount, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return Asset{}, eris.Wrapf(ErrAmountOverflow, "asset %q: %v", s, err)
	}
	return Asset{Amount: amount, Symbol: sym}, nil
}

func (a Asset) String() string {
	sign := ""
	amount := a.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	p := int(a.Symbol.Precision)
	if p == 0 {
		return sign + digits + " " + a.Symbol.Code
	}
	if len(digits) <= p {
		digits = strings.Repeat("0", p-len(digits)+1) + digits
	}
	return sign + digits[:len(digits)-p] + "." + digits[len(digits)-p:] + " " + a.Symbol.Code
}
