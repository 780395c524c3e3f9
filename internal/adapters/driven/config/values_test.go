package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAsInt(t *testing.T) {
	assert.Equal(t, 5, AsInt(5))
	assert.Equal(t, 6, AsInt(int64(6)))
	assert.Equal(t, 7, AsInt(7.9))
	assert.Equal(t, 8, AsInt(" 8 "))
	assert.Equal(t, 0, AsInt("eight"))
	assert.Equal(t, 0, AsInt(nil))
}

func TestAsFloat(t *testing.T) {
	assert.InDelta(t, 0.7, AsFloat("0.7"), 1e-9)
	assert.InDelta(t, 3.0, AsFloat(int64(3)), 1e-9)
	assert.InDelta(t, 0.0, AsFloat(true), 1e-9)
}

func TestAsBool(t *testing.T) {
	for _, v := range []any{true, "true", "1", "YES", "on"} {
		assert.True(t, AsBool(v), v)
	}
	for _, v := range []any{false, "false", "0", "", 1, nil} {
		assert.False(t, AsBool(v), v)
	}
}

func TestAsStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, AsStringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"x"}, AsStringSlice([]any{"x", 2}))
	assert.Equal(t, []string{"a", "b"}, AsStringSlice("a, b"))
	assert.Nil(t, AsStringSlice(""))
	assert.Nil(t, AsStringSlice(3))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseDuration("30s"))
	assert.Equal(t, 90*time.Second, ParseDuration("1m30s"))
	assert.Equal(t, 45*time.Second, ParseDuration(int64(45)))
	assert.Equal(t, 1500*time.Millisecond, ParseDuration("1.5"))
	assert.Equal(t, 2*time.Second, ParseDuration(2*time.Second))
	assert.Zero(t, ParseDuration("soon"))
	assert.Zero(t, ParseDuration(nil))
}
