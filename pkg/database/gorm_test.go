package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpen_RequiresDSN(t *testing.T) {
	db, err := Open(Options{})
	assert.ErrorIs(t, err, ErrEmptyDSN)
	assert.Nil(t, db)
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{DSN: "x", MaxOpenConns: 50}.withDefaults()
	assert.Equal(t, Options{
		DSN:             "x",
		MaxIdleConns:    5,
		MaxOpenConns:    50,
		ConnMaxLifetime: 30 * time.Minute,
		SlowThreshold:   200 * time.Millisecond,
	}, got)
}
