package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpper(t *testing.T) {
	assert.Equal(t, "CEMENTO PORTLAND", Upper("  cemento   portland "))
	assert.Equal(t, "LIMPIEZA Y ÑANDÚ", Upper("limpieza y ñandú"))
	assert.Equal(t, "", Upper("   "))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("oc-1", "OC-1"))
	assert.False(t, Equal("oc-1", "oc-2"))
}
