package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/events/mocks"
)

func TestMultiDeliversToEveryNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)

	ev := events.New(events.OrderPlaced, "r-1", nil)
	first.EXPECT().Notify(gomock.Any(), ev).Return(errors.New("socket closed"))
	second.EXPECT().Notify(gomock.Any(), ev).Return(nil)

	err := events.Multi{first, nil, second}.Notify(context.Background(), ev)
	assert.ErrorContains(t, err, "socket closed")
}

func TestMultiEmpty(t *testing.T) {
	assert.NoError(t, events.Multi{}.Notify(context.Background(), events.Event{}))
	assert.NoError(t, events.Nop{}.Notify(context.Background(), events.Event{}))
}
