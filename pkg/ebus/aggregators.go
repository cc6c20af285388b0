package ebus

import "time"

type EventAggregatorFunc func(b *Bus, name string, value float64)

type EventAggregator struct {
	fun EventAggregatorFunc
}

func (b *Bus) RegisterAggregator(aggs ...*EventAggregator) {
	b.aggregatorsLock.Lock()
	defer b.aggregatorsLock.Unlock()
outer:
	for _, agg := range aggs {
		for _, existing := range b.aggregators {
			if existing == agg {
				continue outer
			}
		}
		b.aggregators = append(b.aggregators, agg)
	}
}

// RateAggregator turns the monotonically increasing counter on topic in
// into a per second rate published on out, at most once per window.
func RateAggregator(in, out string, window time.Duration) *EventAggregator {
	var (
		started    bool
		startTime  time.Time
		startValue float64
	)
	return &EventAggregator{
		fun: func(b *Bus, name string, value float64) {
			if name != in {
				return
			}
			now := time.Now()
			if !started || value < startValue {
				started, startTime, startValue = true, now, value
				return
			}
			elapsed := now.Sub(startTime)
			if elapsed < window {
				return
			}
			b.Publish(out, (value-startValue)/elapsed.Seconds())
			startTime, startValue = now, value
		},
	}
}
