package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidator(t *testing.T) {
	validator, err := NewEventValidator()
	require.NoError(t, err)

	t.Run("valid event", func(t *testing.T) {
		payload := []byte(`{"event_id":"a2b9e3a0-9f1a-4b58-9f40-2f6a4f9f2f11","user_id":1,"product_id":101,"rating":4.5,"timestamp":1700000000}`)
		assert.NoError(t, validator.Validate(payload))
	})

	t.Run("missing field", func(t *testing.T) {
		payload := []byte(`{"user_id":1,"product_id":101,"rating":4.5}`)
		assert.Error(t, validator.Validate(payload))
	})

	t.Run("negative user id", func(t *testing.T) {
		payload := []byte(`{"user_id":-1,"product_id":101,"rating":4.5,"timestamp":1700000000}`)
		assert.Error(t, validator.Validate(payload))
	})

	t.Run("unknown field", func(t *testing.T) {
		payload := []byte(`{"user_id":1,"product_id":101,"rating":4.5,"timestamp":1700000000,"color":"red"}`)
		assert.Error(t, validator.Validate(payload))
	})

	t.Run("wrong type", func(t *testing.T) {
		payload := []byte(`{"user_id":"one","product_id":101,"rating":4.5,"timestamp":1700000000}`)
		assert.Error(t, validator.Validate(payload))
	})
}
