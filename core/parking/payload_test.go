package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Message
	}{
		{"parked", "1", Message{Flag: FlagParked}},
		{"parked trailing space", "1 ", Message{Flag: FlagParked}},
		{"left with price", "0 12.5", Message{Flag: FlagLeft, HasPrice: true, Price: 12.5}},
		{"left without price", "0", Message{Flag: FlagLeft}},
		{"left bad price", "0 abc", Message{Flag: FlagLeft, HasPrice: true}},
		{"left nan", "0 NaN", Message{Flag: FlagLeft, HasPrice: true}},
		{"tabs", "0\t7", Message{Flag: FlagLeft, HasPrice: true, Price: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePayloadErrors(t *testing.T) {
	_, err := ParsePayload("   ")
	assert.ErrorIs(t, err, ErrEmptyPayload)

	msg, err := ParsePayload("2 10")
	assert.ErrorIs(t, err, ErrUnknownFlag)
	assert.Equal(t, Flag("2"), msg.Flag)
}

func TestFormatPayloadRoundTrip(t *testing.T) {
	assert.Equal(t, "1", FormatPayload(Message{Flag: FlagParked}))
	assert.Equal(t, "0 3.75", FormatPayload(Message{Flag: FlagLeft, HasPrice: true, Price: 3.75}))
	assert.Equal(t, "0", FormatPayload(Message{Flag: FlagLeft}))

	got, err := ParsePayload(FormatPayload(Message{Flag: FlagLeft, HasPrice: true, Price: 3.75}))
	require.NoError(t, err)
	assert.InDelta(t, 3.75, got.Price, 1e-9)
}
