package feed

import (
	"encoding/binary"
	"math"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// Packet type codes carried in byte 0 of every feed frame.
const (
	PacketTypeTicker uint8 = 2
	PacketTypeQuote  uint8 = 4
	PacketTypeFull   uint8 = 8
)

// tickFrameSize is the minimum frame length holding the fields this
// engine reads. QUOTE and FULL frames carry depth fields past this
// offset; they are ignored.
const tickFrameSize = 16

// Frame layout, little-endian:
//
//	[0]     packet type
//	[1:3]   declared payload length (informational, never trusted)
//	[3]     exchange segment code
//	[4:8]   security id (int32)
//	[8:12]  last traded price (float32)
//	[12:16] last trade time (int32, epoch seconds)

// Decode parses one raw feed frame into a Tick. A malformed frame
// returns an error and must be dropped by the caller; decoding the
// next frame is always safe.
func Decode(frame []byte) (model.Tick, error) {
	if len(frame) < tickFrameSize {
		return model.Tick{}, errors.Wrapf(exception.ErrFrameTooShort, "got %d bytes, need %d", len(frame), tickFrameSize)
	}

	switch frame[0] {
	case PacketTypeTicker, PacketTypeQuote, PacketTypeFull:
	default:
		return model.Tick{}, errors.Wrapf(exception.ErrUnknownPacketType, "code %d", frame[0])
	}

	segment, ok := enum.ParseExchangeSegment(frame[3])
	if !ok {
		return model.Tick{}, errors.Wrapf(exception.ErrUnknownSegment, "code %d", frame[3])
	}

	price := math.Float32frombits(binary.LittleEndian.Uint32(frame[8:12]))

	return model.Tick{
		SecurityID:        int32(binary.LittleEndian.Uint32(frame[4:8])),
		ExchangeSegment:   segment,
		LastTradedPrice:   decimal.NewFromFloat32(price),
		LastTradeEpochSec: int64(int32(binary.LittleEndian.Uint32(frame[12:16]))),
	}, nil
}
