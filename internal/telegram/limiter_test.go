package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestUserLimiterIsPerUser(t *testing.T) {
	l := newUserLimiter(rate.Limit(0.001), 1)

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2))
	assert.Same(t, l.get(1), l.get(1))
}
