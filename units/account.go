package units

import (
	eos "github.com/eoscanada/eos-go"
	"github.com/rotisserie/eris"
)

// Account is a native ledger account identifier, a 64-bit packed name.
type Account uint64

// ParseAccount parses the textual form of a native account name such as "endrmng.xsat".
func ParseAccount(s string) (Account, error) {
	v, err := eos.StringToName(s)
	if err != nil {
		return 0, eris.Wrapf(ErrInvalidAccount, "%q: %v", s, err)
	}
	if eos.NameToString(v) != s {
		return 0, eris.Wrapf(ErrInvalidAccount, "%q is not a canonical name", s)
	}
	return Account(v), nil
}

// MustParseAccount is ParseAccount for constants. It panics on error.
func MustParseAccount(s string) Account {
	a, err := ParseAccount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Account) String() string {
	return eos.NameToString(uint64(a))
}

// Name returns the account as an eos-go name.
func (a Account) Name() eos.Name {
	return eos.Name(a.String())
}

func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Account) UnmarshalText(text []byte) error {
	v, err := ParseAccount(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
