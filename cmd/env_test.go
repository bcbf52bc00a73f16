package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKey_OverrideBeatsConfigured(t *testing.T) {
	assert.Equal(t, "flag-key", resolveKey("anthropic", "flag-key", "config-key"))
}

func TestResolveKey_FallsBackToConfigured(t *testing.T) {
	assert.Equal(t, "config-key", resolveKey("anthropic", "", "config-key"))
}

func TestResolveKey_Unset(t *testing.T) {
	assert.Equal(t, "", resolveKey("anthropic", "", ""))
}
