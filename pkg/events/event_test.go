package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	e := New(BundleRenewed, map[string]interface{}{"bundle_id": "b-1", "tier": "PRO"}, at)

	raw, err := Encode(e)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, BundleRenewed, got.EventType())
	assert.True(t, at.Equal(got.Timestamp()))
	assert.Equal(t, "b-1", got.String("bundle_id"))
	assert.Equal(t, "", got.String("missing"))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)
}
