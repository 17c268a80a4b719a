package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierdeckel/bierdeckel-api/models"
)

func TestServiceCallLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s := f.session(t, 6)

	call, err := f.svc.ServiceCalls.Create(ctx, s.ID, "waiter", "Noch eine Runde bitte")
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCallOpen, call.Status)
	assert.Equal(t, 6, call.TableNumber)

	open, err := f.svc.ServiceCalls.ListOpen(ctx, f.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Noch eine Runde bitte", open[0].Message)

	updated, err := f.svc.ServiceCalls.UpdateStatus(ctx, f.restaurant.ID, call.ID, models.ServiceCallInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCallInProgress, updated.Status)

	_, err = f.svc.ServiceCalls.UpdateStatus(ctx, f.restaurant.ID, call.ID, models.ServiceCallDone)
	require.NoError(t, err)

	open, err = f.svc.ServiceCalls.ListOpen(ctx, f.restaurant.ID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestServiceCallRejects(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s := f.session(t, 1)

	_, err := f.svc.ServiceCalls.Create(ctx, s.ID, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ServiceCalls.Create(ctx, "missing", "bill", "")
	assert.ErrorIs(t, err, ErrNotFound)

	call, err := f.svc.ServiceCalls.Create(ctx, s.ID, "bill", "")
	require.NoError(t, err)

	_, err = f.svc.ServiceCalls.UpdateStatus(ctx, f.restaurant.ID, call.ID, "lost")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ServiceCalls.UpdateStatus(ctx, f.restaurant.ID, "missing", models.ServiceCallDone)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ServiceCalls.UpdateStatus(ctx, "elsewhere", call.ID, models.ServiceCallDone)
	assert.ErrorIs(t, err, ErrForbidden)
}
