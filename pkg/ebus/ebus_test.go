package ebus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roffe/plotcanvas/pkg/ebus"
)

func TestPublish(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		data    float64
		wantErr bool
	}{
		{
			name:  "test",
			topic: "test",
			data:  1.23,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ebus.New()
			defer b.Close()
			gotErr := b.Publish(tt.topic, tt.data)
			if gotErr != nil {
				if !tt.wantErr {
					t.Errorf("Publish() failed: %v", gotErr)
				}
				return
			}
			if tt.wantErr {
				t.Fatal("Publish() succeeded unexpectedly")
			}
		})
	}
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		value float64
	}{
		{name: "frames", topic: "frame.rendered", value: 3.14},
		{name: "height", topic: "plot set 1.height", value: 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ebus.New()
			defer b.Close()
			gotChan := b.Subscribe(tt.topic)
			require.NotNil(t, gotChan)
			require.NoError(t, b.Publish(tt.topic, tt.value))
			select {
			case v := <-gotChan:
				assert.Equal(t, tt.value, v)
			case <-time.After(time.Second):
				t.Fatal("Subscribe() got nothing")
			}
			b.Unsubscribe(gotChan)
			_, open := <-gotChan
			assert.False(t, open)
		})
	}
}

func TestSubscribeFunc(t *testing.T) {
	b := ebus.New()
	defer b.Close()
	got := make(chan float64, 1)
	cleanup := b.SubscribeFunc("test", func(v float64) {
		got <- v
	})
	require.NotNil(t, cleanup)
	require.NoError(t, b.Publish("test", 2.71))
	select {
	case v := <-got:
		assert.Equal(t, 2.71, v)
	case <-time.After(time.Second):
		t.Fatal("SubscribeFunc() never called")
	}
	cleanup()
}

func TestLateSubscriberGetsLastValue(t *testing.T) {
	b := ebus.New()
	defer b.Close()
	require.NoError(t, b.Publish("figure.count", 2))
	require.Eventually(t, func() bool {
		v, ok := b.Last("figure.count")
		return ok && v == 2
	}, time.Second, time.Millisecond)

	ch := b.Subscribe("figure.count")
	assert.Equal(t, 2.0, <-ch)

	all := b.SubscribeAll()
	msg := <-all
	assert.Equal(t, ebus.Message{Topic: "figure.count", Data: 2}, msg)
}

func TestRateAggregator(t *testing.T) {
	b := ebus.New()
	defer b.Close()
	b.RegisterAggregator(ebus.RateAggregator("frame.rendered", "frame.fps", 20*time.Millisecond))
	fps := b.Subscribe("frame.fps")

	require.NoError(t, b.Publish("frame.rendered", 1))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, b.Publish("frame.rendered", 5))

	select {
	case v := <-fps:
		assert.Greater(t, v, 0.0)
	case <-time.After(time.Second):
		t.Fatal("no rate published")
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := ebus.New()
	ch := b.Subscribe("x")
	all := b.SubscribeAll()
	b.Close()
	_, open := <-ch
	assert.False(t, open)
	_, open = <-all
	assert.False(t, open)
	assert.NoError(t, b.Publish("x", 1))
}

func TestSubscribeAfterClose(t *testing.T) {
	b := ebus.New()
	require.NoError(t, b.Publish("x", 1))
	require.Eventually(t, func() bool { _, ok := b.Last("x"); return ok }, time.Second, time.Millisecond)
	b.Close()

	_, open := <-b.Subscribe("x")
	assert.False(t, open)
	_, open = <-b.SubscribeAll()
	assert.False(t, open)

	done := make(chan struct{})
	b.SubscribeFunc("x", func(float64) { t.Error("callback after close") })
	b.SubscribeAllFunc(func(string, float64) { t.Error("callback after close") })
	go func() {
		b.Subscribe("y")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscribe blocked after close")
	}
}
