package redisx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashBodyIgnoresVolatileFields(t *testing.T) {
	base := HashBody([]byte(`{"orders":{"wild5":{"remove_count":2}},"operator":"ivan"}`))

	withVolatile := HashBody([]byte(`{"orders":{"wild5":{"remove_count":2}},"operator":"ivan","operation_id":"op-1","timestamp":"2026-03-01T10:00:00Z","request_id":"r-9"}`))
	assert.Equal(t, base, withVolatile)

	otherVolatile := HashBody([]byte(`{"orders":{"wild5":{"remove_count":2}},"operator":"ivan","operation_id":"op-2"}`))
	assert.Equal(t, base, otherVolatile)
}

func TestHashBodyKeyOrderIndependent(t *testing.T) {
	a := HashBody([]byte(`{"operator":"ivan","move_to_final":true}`))
	b := HashBody([]byte(`{"move_to_final":true,"operator":"ivan"}`))
	assert.Equal(t, a, b)
}

func TestHashBodyDetectsPayloadChanges(t *testing.T) {
	a := HashBody([]byte(`{"orders":{"wild5":{"remove_count":2}}}`))
	b := HashBody([]byte(`{"orders":{"wild5":{"remove_count":3}}}`))
	assert.NotEqual(t, a, b)
}

func TestHashBodyNonJSONFallsBackToRawBytes(t *testing.T) {
	a := HashBody([]byte("not json"))
	b := HashBody([]byte("not json"))
	c := HashBody([]byte("other"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
