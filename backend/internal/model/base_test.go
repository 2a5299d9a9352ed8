package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_ScanValue(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan([]byte(`{"swap_request_id":"abc","count":2}`)))
	assert.Equal(t, "abc", m["swap_request_id"])
	assert.Equal(t, float64(2), m["count"])

	v, err := m.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"swap_request_id":"abc","count":2}`, v.(string))
}

func TestJSONMap_NilAndEmpty(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	require.NoError(t, m.Scan(""))
	assert.Empty(t, m)
}

func TestJSONMap_ScanRejectsUnknownType(t *testing.T) {
	var m JSONMap
	assert.Error(t, m.Scan(42))
	assert.Error(t, m.Scan([]byte("not json")))
}
