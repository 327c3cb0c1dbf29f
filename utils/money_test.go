package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int64
		isErr bool
	}{
		{name: "plain integer", text: "250", want: 25000},
		{name: "comma separator", text: "12,5", want: 1250},
		{name: "dot separator", text: "199.99", want: 19999},
		{name: "amount inside sentence", text: "je veux 50 euros", want: 5000},
		{name: "first token wins", text: "50 ou 60", want: 5000},
		{name: "no digits", text: "bonjour", isErr: true},
		{name: "empty", text: "", isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmountCents(tt.text)
			if tt.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignedAmountCents(t *testing.T) {
	got, err := ParseSignedAmountCents("-10")
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), got)

	got, err = ParseSignedAmountCents("+50")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got)
}

func TestEuroFmt(t *testing.T) {
	assert.Equal(t, "50.00€", EuroFmt(5000))
	assert.Equal(t, "0.05€", EuroFmt(5))
	assert.Equal(t, "199.00€", EuroFmt(19900))
}
