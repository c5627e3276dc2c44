package smpp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeliveryReceipt(t *testing.T) {
	body := "id:ABC123 sub:001 dlvrd:001 submit date:2508061200 done date:2508061205 stat:DELIVRD err:000 text:Hello world"
	r, ok := ParseDeliveryReceipt(body)
	require.True(t, ok)
	assert.Equal(t, "ABC123", r.MessageID)
	assert.Equal(t, 1, r.Submitted)
	assert.Equal(t, 1, r.Delivered)
	assert.Equal(t, "DELIVRD", r.Stat)
	assert.Equal(t, "000", r.Err)
	assert.Equal(t, "Hello world", r.Text)

	want := time.Date(2025, 8, 6, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, want, r.SubmitDate)
	assert.Equal(t, want.Add(5*time.Minute), r.DoneDate)
}

func TestParseDeliveryReceiptMissingID(t *testing.T) {
	_, ok := ParseDeliveryReceipt("sub:001 dlvrd:001 stat:DELIVRD")
	assert.False(t, ok)
}

func TestParseDeliveryReceiptIgnoresUnknownFields(t *testing.T) {
	r, ok := ParseDeliveryReceipt("id:X stat:EXPIRED vendor:whatever")
	require.True(t, ok)
	assert.Equal(t, "X", r.MessageID)
	assert.Equal(t, "EXPIRED", r.Stat)
}
