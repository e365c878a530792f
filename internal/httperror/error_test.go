package httperror_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-bridge/backend/internal/httperror"
)

func TestNew(t *testing.T) {
	e := httperror.New(errors.New("request failed"))
	assert.Equal(t, "request failed", e.Message)
}

func TestNewFromString(t *testing.T) {
	e := httperror.NewFromString("nope")
	assert.Equal(t, "nope", e.Message)
}

func TestJSONKey(t *testing.T) {
	body, err := json.Marshal(httperror.NewFromString("nope"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "nope"}`, string(body))
}
