package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/eventbus"
)

type created struct {
	ID uint
}

type updated struct {
	ID uint
}

func TestPublishMatchesHandlerSignature(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())

	var got []uint
	bus.Subscribe(func(e created) {
		got = append(got, e.ID)
	})

	bus.Publish(created{ID: 1})
	bus.Publish(updated{ID: 2})
	bus.Publish(created{ID: 3})

	require.Equal(t, []uint{1, 3}, got)
}

func TestPublishRecoversFromPanic(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())

	var after bool
	bus.Subscribe(func(created) { panic("boom") })
	bus.Subscribe(func(created) { after = true })

	require.NotPanics(t, func() { bus.Publish(created{ID: 1}) })
	require.True(t, after)
}

func TestClearAndCount(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())
	bus.Subscribe(func(created) {})
	bus.Subscribe(func(updated) {})
	require.Equal(t, 2, bus.SubscribersCount())

	bus.Clear()
	require.Equal(t, 0, bus.SubscribersCount())
}
