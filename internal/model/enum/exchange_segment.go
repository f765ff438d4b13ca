package enum

// ExchangeSegment identifies the venue segment an instrument trades on.
// Values match the feed's wire codes.
type ExchangeSegment uint8

const (
	ExchangeSegmentNSEEq   ExchangeSegment = 0
	ExchangeSegmentNSEFno  ExchangeSegment = 1
	ExchangeSegmentBSEEq   ExchangeSegment = 3
	ExchangeSegmentBSEFno  ExchangeSegment = 4
	ExchangeSegmentMCXComm ExchangeSegment = 6
	ExchangeSegmentIndex   ExchangeSegment = 13
)

var segmentNames = map[ExchangeSegment]string{
	ExchangeSegmentNSEEq:   "NSE_EQ",
	ExchangeSegmentNSEFno:  "NSE_FNO",
	ExchangeSegmentBSEEq:   "BSE_EQ",
	ExchangeSegmentBSEFno:  "BSE_FNO",
	ExchangeSegmentMCXComm: "MCX_COMM",
	ExchangeSegmentIndex:   "INDEX",
}

func (s ExchangeSegment) IsAvailable() bool {
	_, ok := segmentNames[s]
	return ok
}

func (s ExchangeSegment) String() string {
	name, ok := segmentNames[s]
	if !ok {
		return "UNKNOWN"
	}
	return name
}

// ParseExchangeSegment maps a wire code to a segment.
func ParseExchangeSegment(code uint8) (ExchangeSegment, bool) {
	s := ExchangeSegment(code)
	return s, s.IsAvailable()
}
