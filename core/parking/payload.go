package parking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Flag is the first token of a payload.
type Flag string

const (
	// FlagParked marks the vehicle as parked.
	FlagParked Flag = "1"
	// FlagLeft marks the vehicle as gone. It may carry the session price.
	FlagLeft Flag = "0"
)

var (
	// ErrEmptyPayload is returned for a payload with no tokens.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrUnknownFlag is returned when the first token is neither "1" nor "0".
	ErrUnknownFlag = errors.New("unknown status flag")
)

// Message is a parsed payload.
type Message struct {
	Flag Flag
	// HasPrice reports whether a second token was present.
	HasPrice bool
	// Price is 0 when the second token is not a finite decimal.
	Price float64
}

// ParsePayload parses "<flag> [<price>]". Tokens are separated by any
// whitespace. Unknown flags return ErrUnknownFlag together with the flag so
// callers can log it.
func ParsePayload(payload string) (Message, error) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return Message{}, ErrEmptyPayload
	}
	msg := Message{Flag: Flag(fields[0])}
	switch msg.Flag {
	case FlagParked:
		return msg, nil
	case FlagLeft:
		if len(fields) > 1 {
			msg.HasPrice = true
			msg.Price = parsePrice(fields[1])
		}
		return msg, nil
	default:
		return msg, fmt.Errorf("%w %q", ErrUnknownFlag, fields[0])
	}
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatPayload renders msg in the wire format read by ParsePayload.
func FormatPayload(msg Message) string {
	if msg.Flag == FlagLeft && msg.HasPrice {
		return string(msg.Flag) + " " + strconv.FormatFloat(msg.Price, 'f', 2, 64)
	}
	return string(msg.Flag)
}
