package message

import (
	"bytes"

	eos "github.com/eoscanada/eos-go"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/units"
)

// VersionV0 is the only supported envelope version.
const VersionV0 = 0

// BridgeMessage is a message emitted by an EVM contract toward a native account.
type BridgeMessage struct {
	Receiver  units.Account  `json:"receiver"`
	Sender    common.Address `json:"sender"`
	Timestamp uint64         `json:"timestamp"` // microseconds since the unix epoch
	Value     []byte         `json:"value"`
	Data      []byte         `json:"data"`
}

// Selector returns the selector of the payload.
func (m BridgeMessage) Selector() (abi.Selector, error) {
	return abi.PeekSelector(m.Data)
}

// bridgeMessageV0 is the binary layout of version 0.
type bridgeMessageV0 struct {
	Receiver  eos.Name
	Sender    []byte
	Timestamp uint64
	Value     []byte
	Data      []byte
}

// Unpack decodes a version-tagged bridge message envelope.
func Unpack(raw []byte) (BridgeMessage, error) {
	dec := eos.NewDecoder(raw)
	version, err := dec.ReadUvarint32()
	if err != nil {
		return BridgeMessage{}, eris.Wrap(abi.ErrTruncatedMessage, "bridge message version")
	}
	if version != VersionV0 {
		return BridgeMessage{}, eris.Wrapf(ErrUnsupportedMessageVersion, "version %d", version)
	}

	var v0 bridgeMessageV0
	if err := dec.Decode(&v0); err != nil {
		return BridgeMessage{}, eris.Wrapf(abi.ErrTruncatedMessage, "bridge message v0: %v", err)
	}

	receiver, err := eos.StringToName(string(v0.Receiver))
	if err != nil {
		return BridgeMessage{}, eris.Wrap(err, "bridge message receiver")
	}
	if len(v0.Sender) != common.AddressLength {
		return BridgeMessage{}, eris.Wrapf(abi.ErrInvalidAddress, "sender has %d bytes", len(v0.Sender))
	}

	return BridgeMessage{
		Receiver:  units.Account(receiver),
		Sender:    common.BytesToAddress(v0.Sender),
		Timestamp: v0.Timestamp,
		Value:     v0.Value,
		Data:      v0.Data,
	}, nil
}

// Pack encodes m as a version 0 envelope.
func Pack(m BridgeMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := eos.NewEncoder(&buf)
	if err := enc.Encode(eos.Varuint32(VersionV0)); err != nil {
		return nil, eris.Wrap(err, "failed to encode bridge message version")
	}
	err := enc.Encode(bridgeMessageV0{
		Receiver:  m.Receiver.Name(),
		Sender:    m.Sender.Bytes(),
		Timestamp: m.Timestamp,
		Value:     m.Value,
		Data:      m.Data,
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode bridge message")
	}
	return buf.Bytes(), nil
}
