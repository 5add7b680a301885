package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/woundtrack/internal/application/services"
)

func TestLatest_NewerCallCancelsOlder(t *testing.T) {
	var gate services.Latest

	oldCtx, oldTicket := gate.Begin(context.Background())
	newCtx, newTicket := gate.Begin(context.Background())

	assert.ErrorIs(t, oldCtx.Err(), context.Canceled)
	assert.NoError(t, newCtx.Err())

	applied := ""
	assert.ErrorIs(t, oldTicket.Finish(nil, func() { applied = "old" }), services.ErrSuperseded)
	assert.NoError(t, newTicket.Finish(nil, func() { applied = "new" }))
	assert.Equal(t, "new", applied)
	assert.ErrorIs(t, newCtx.Err(), context.Canceled)
}

func TestLatest_ErrorSkipsApply(t *testing.T) {
	var gate services.Latest
	boom := errors.New("boom")

	_, ticket := gate.Begin(context.Background())
	called := false
	err := ticket.Finish(boom, func() { called = true })

	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestLatest_FinishedCallDoesNotCancelNext(t *testing.T) {
	var gate services.Latest

	_, first := gate.Begin(context.Background())
	assert.NoError(t, first.Finish(nil, nil))

	ctx, second := gate.Begin(context.Background())
	assert.NoError(t, ctx.Err())
	assert.NoError(t, second.Finish(nil, nil))
}
