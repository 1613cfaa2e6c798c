package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueKindString(t *testing.T) {
	assert.Equal(t, "int", KindInt.String())
	assert.Equal(t, "object", KindObjectID.String())
}

func TestDefaultConfigHasUsableDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.Prompt)
	assert.Greater(t, cfg.MaxHistory, 0)
}
