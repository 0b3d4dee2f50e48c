// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package eventhub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/sallust"
)

var (
	temp  = model.AttributeRef{ID: "a1", Name: "temp"}
	power = model.AttributeRef{ID: "a2", Name: "power"}
)

type mockCurrentValuer struct {
	mock.Mock
}

func (m *mockCurrentValuer) CurrentValues(ctx context.Context, refs []model.AttributeRef) ([]model.AttributeEvent, error) {
	args := m.Called(ctx, refs)
	return args.Get(0).([]model.AttributeEvent), args.Error(1)
}

type collector struct {
	mu     sync.Mutex
	events []model.AttributeEvent
}

func (c *collector) onEvent(e model.AttributeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) get() []model.AttributeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.AttributeEvent(nil), c.events...)
}

func newMeasures() *Measures {
	return &Measures{
		Deliveries:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "testDeliveries"}, []string{OutcomeLabel}),
		Subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "testSubscriptions"}, []string{OutcomeLabel}),
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{}, nil, nil, nil)
	assert.True(t, errors.Is(err, ErrNilMeasures))

	h, err := New(Config{}, nil, nil, newMeasures())
	require.NoError(t, err)
	assert.Equal(t, defaultQueueSize, h.queueSize)
}

func TestSubscribeValidation(t *testing.T) {
	tcs := []struct {
		desc        string
		refs        []model.AttributeRef
		onEvent     func(model.AttributeEvent)
		closed      bool
		expectedErr error
	}{
		{
			desc:        "No refs",
			onEvent:     func(model.AttributeEvent) {},
			expectedErr: ErrNoRefs,
		},
		{
			desc:        "No callback",
			refs:        []model.AttributeRef{temp},
			expectedErr: ErrNoCallback,
		},
		{
			desc:        "Closed",
			refs:        []model.AttributeRef{temp},
			onEvent:     func(model.AttributeEvent) {},
			closed:      true,
			expectedErr: ErrHubClosed,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)
			m := newMeasures()
			h, err := New(Config{}, nil, sallust.Default(), m)
			require.NoError(t, err)
			if tc.closed {
				h.Close()
			}
			id, err := h.Subscribe(context.Background(), tc.refs, false, tc.onEvent)
			assert.Empty(id)
			assert.True(errors.Is(err, tc.expectedErr))
			assert.Equal(1.0, testutil.ToFloat64(m.Subscriptions.With(prometheus.Labels{OutcomeLabel: RejectedOutcome})))
		})
	}
}

func TestPublishRoutesByRef(t *testing.T) {
	h, err := New(Config{}, nil, sallust.Default(), newMeasures())
	require.NoError(t, err)
	var tempEvents, powerEvents collector

	_, err = h.Subscribe(context.Background(), []model.AttributeRef{temp}, false, tempEvents.onEvent)
	require.NoError(t, err)
	_, err = h.Subscribe(context.Background(), []model.AttributeRef{power}, false, powerEvents.onEvent)
	require.NoError(t, err)

	h.Publish(model.AttributeEvent{Ref: temp, Value: 20.5})

	require.Eventually(t, func() bool { return len(tempEvents.get()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 20.5, tempEvents.get()[0].Value)
	assert.Empty(t, powerEvents.get())
}

func TestPushCurrent(t *testing.T) {
	assert := assert.New(t)
	cv := new(mockCurrentValuer)
	cv.On("CurrentValues", mock.Anything, []model.AttributeRef{temp, power}).
		Return([]model.AttributeEvent{{Ref: temp, Value: 19.0}, {Ref: power, Value: 7.0}}, nil).Once()

	h, err := New(Config{}, cv, sallust.Default(), newMeasures())
	require.NoError(t, err)

	var c collector
	_, err = h.Subscribe(context.Background(), []model.AttributeRef{temp, power}, true, c.onEvent)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(c.get()) == 2 }, time.Second, time.Millisecond)
	events := c.get()
	assert.Equal(temp, events[0].Ref)
	assert.Equal(19.0, events[0].Value)
	assert.Equal(power, events[1].Ref)
	assert.Equal(7.0, events[1].Value)
	cv.AssertExpectations(t)
}

func TestPushCurrentReadsThroughStore(t *testing.T) {
	assert := assert.New(t)
	cv := new(mockCurrentValuer)
	cv.On("CurrentValues", mock.Anything, []model.AttributeRef{temp}).
		Return([]model.AttributeEvent{{Ref: temp, Value: 3.0, Timestamp: 2}}, nil)

	h, err := New(Config{}, cv, sallust.Default(), newMeasures())
	require.NoError(t, err)

	// the store moved on to 3 without an event going through the hub
	h.Publish(model.AttributeEvent{Ref: temp, Value: 2.0, Timestamp: 1})
	assert.Empty(h.last)

	var c collector
	_, err = h.Subscribe(context.Background(), []model.AttributeRef{temp}, true, c.onEvent)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(c.get()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(3.0, c.get()[0].Value)
}

func TestLiveEventDuringPushCurrentWins(t *testing.T) {
	assert := assert.New(t)
	cv := new(mockCurrentValuer)
	h, err := New(Config{}, cv, sallust.Default(), newMeasures())
	require.NoError(t, err)

	cv.On("CurrentValues", mock.Anything, []model.AttributeRef{temp, power}).
		Run(func(mock.Arguments) { h.Publish(model.AttributeEvent{Ref: temp, Value: 6.0, Timestamp: 10}) }).
		Return([]model.AttributeEvent{{Ref: temp, Value: 5.0, Timestamp: 5}, {Ref: power, Value: 7.0}}, nil)

	var c collector
	_, err = h.Subscribe(context.Background(), []model.AttributeRef{temp, power}, true, c.onEvent)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(c.get()) == 2 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal([]model.AttributeEvent{
		{Ref: power, Value: 7.0},
		{Ref: temp, Value: 6.0, Timestamp: 10},
	}, c.get())
}

func TestPushRemembered(t *testing.T) {
	tcs := []struct {
		desc     string
		forget   string
		expected []model.AttributeEvent
	}{
		{
			desc:     "Remembered",
			expected: []model.AttributeEvent{{Ref: temp, Value: 19.0}},
		},
		{
			desc:   "Forgotten",
			forget: "a1",
		},
		{
			desc:     "Other asset forgotten",
			forget:   "a2",
			expected: []model.AttributeEvent{{Ref: temp, Value: 19.0}},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			h, err := New(Config{}, nil, sallust.Default(), newMeasures())
			require.NoError(t, err)
			h.Publish(model.AttributeEvent{Ref: temp, Value: 19.0})
			h.Publish(model.AttributeEvent{Ref: power, Value: 7.0})
			if tc.forget != "" {
				h.Forget(tc.forget)
			}

			var c collector
			_, err = h.Subscribe(context.Background(), []model.AttributeRef{temp}, true, c.onEvent)
			require.NoError(t, err)

			time.Sleep(10 * time.Millisecond)
			assert.Equal(t, tc.expected, c.get())
		})
	}
}

func TestUnsubscribeDuringPushCurrent(t *testing.T) {
	cv := new(mockCurrentValuer)
	h, err := New(Config{}, cv, sallust.Default(), newMeasures())
	require.NoError(t, err)

	var id string
	cv.On("CurrentValues", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { h.Close() }).
		Return([]model.AttributeEvent{{Ref: temp, Value: 1.0}}, nil)

	var c collector
	id, err = h.Subscribe(context.Background(), []model.AttributeRef{temp}, true, c.onEvent)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, c.get())
}

func TestPushCurrentFailureIsNotFatal(t *testing.T) {
	cv := new(mockCurrentValuer)
	cv.On("CurrentValues", mock.Anything, mock.Anything).Return([]model.AttributeEvent(nil), errors.New("db down"))

	h, err := New(Config{}, cv, sallust.Default(), newMeasures())
	require.NoError(t, err)

	var c collector
	id, err := h.Subscribe(context.Background(), []model.AttributeRef{temp}, true, c.onEvent)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	h.Publish(model.AttributeEvent{Ref: temp, Value: 1.0})
	require.Eventually(t, func() bool { return len(c.get()) == 1 }, time.Second, time.Millisecond)
}

func TestUnsubscribe(t *testing.T) {
	m := newMeasures()
	h, err := New(Config{}, nil, sallust.Default(), m)
	require.NoError(t, err)

	var c collector
	id, err := h.Subscribe(context.Background(), []model.AttributeRef{temp}, false, c.onEvent)
	require.NoError(t, err)

	h.Unsubscribe(id)
	h.Unsubscribe(id)
	h.Publish(model.AttributeEvent{Ref: temp, Value: 1.0})

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, c.get())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscriptions.With(prometheus.Labels{OutcomeLabel: UnsubscribedOutcome})))
}

func TestFullQueueDrops(t *testing.T) {
	m := newMeasures()
	h, err := New(Config{QueueSize: 1}, nil, sallust.Default(), m)
	require.NoError(t, err)

	block := make(chan struct{})
	_, err = h.Subscribe(context.Background(), []model.AttributeRef{temp}, false, func(model.AttributeEvent) {
		<-block
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		h.Publish(model.AttributeEvent{Ref: temp, Value: i})
	}
	close(block)

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.Deliveries.With(prometheus.Labels{OutcomeLabel: DroppedOutcome})), 3.0)
	h.Close()
}
