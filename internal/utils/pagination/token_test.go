package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 15, 9, 30, 0, 123456789, time.UTC)
	entryID := "entry-abc"

	token := EncodeEntryToken(createdAt, entryID)
	gotTime, gotID, err := DecodeEntryToken(token)

	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, entryID, gotID)
}

func TestDecodeEntryTokenErrors(t *testing.T) {
	_, _, err := DecodeEntryToken("not base64 !!!")
	assert.Error(t, err)

	_, _, err = DecodeEntryToken(base64.StdEncoding.EncodeToString([]byte("no-separator")))
	assert.Error(t, err)

	_, _, err = DecodeEntryToken(base64.StdEncoding.EncodeToString([]byte("2026-03-15T09:30:00Z|")))
	assert.Error(t, err)

	_, _, err = DecodeEntryToken(base64.StdEncoding.EncodeToString([]byte("yesterday|entry-1")))
	assert.Error(t, err)
}
