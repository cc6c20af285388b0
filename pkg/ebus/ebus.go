// Package ebus is a small float64 pub/sub bus. The last value of every topic
// is cached so late subscribers start from the current state.
package ebus

import (
	"errors"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	log "github.com/sirupsen/logrus"
)

var ErrFull = errors.New("publish channel full")

type Message struct {
	Topic string
	Data  float64
}

type Bus struct {
	subs      map[string][]chan float64
	subsMutex sync.Mutex

	subsAll      []chan Message
	subsAllMutex sync.Mutex

	inChan       chan Message
	unsubChan    chan chan float64
	unsubAllChan chan chan Message
	quit         chan struct{}
	closeOnce    sync.Once

	cache *ttlcache.Cache[string, float64]

	aggregators     []*EventAggregator
	aggregatorsLock sync.Mutex
}

type BusOpt func(*Bus)

// WithTTL sets how long an unchanged topic value is remembered.
func WithTTL(ttl time.Duration) BusOpt {
	return func(b *Bus) {
		b.cache = ttlcache.New[string, float64](
			ttlcache.WithTTL[string, float64](ttl),
		)
	}
}

func New(opts ...BusOpt) *Bus {
	b := &Bus{
		subs:         make(map[string][]chan float64),
		inChan:       make(chan Message, 100),
		unsubChan:    make(chan chan float64, 100),
		unsubAllChan: make(chan chan Message, 100),
		quit:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cache == nil {
		WithTTL(1 * time.Minute)(b)
	}
	go b.cache.Start()
	go b.run()
	return b
}

// Close stops the bus and closes every subscriber channel.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.cache.Stop()
	})
}

func (b *Bus) run() {
	defer b.closeAll()
	for {
		select {
		case <-b.quit:
			return
		case msg := <-b.inChan:
			if v := b.cache.Get(msg.Topic); v != nil {
				if v.Value() == msg.Data {
					continue
				}
			}
			b.cache.Set(msg.Topic, msg.Data, ttlcache.DefaultTTL)

			b.subsAllMutex.Lock()
			for _, sub := range b.subsAll {
				select {
				case sub <- msg:
				default:
				}
			}
			b.subsAllMutex.Unlock()

			b.subsMutex.Lock()
			for _, sub := range b.subs[msg.Topic] {
				select {
				case sub <- msg.Data:
				default:
				}
			}
			b.subsMutex.Unlock()

			b.aggregatorsLock.Lock()
			aggs := b.aggregators
			b.aggregatorsLock.Unlock()
			for _, agg := range aggs {
				agg.fun(b, msg.Topic, msg.Data)
			}

		case unsub := <-b.unsubAllChan:
			b.subsAllMutex.Lock()
			for i, sub := range b.subsAll {
				if sub == unsub {
					b.subsAll = append(b.subsAll[:i], b.subsAll[i+1:]...)
					close(sub)
					break
				}
			}
			b.subsAllMutex.Unlock()
		case unsub := <-b.unsubChan:
			b.subsMutex.Lock()
		outer:
			for topic, subz := range b.subs {
				for i, sub := range subz {
					if sub == unsub {
						log.Debugln("Unsubscribe", topic)
						b.subs[topic] = append(subz[:i], subz[i+1:]...)
						close(unsub)
						if len(b.subs[topic]) == 0 {
							delete(b.subs, topic)
						}
						break outer
					}
				}
			}
			b.subsMutex.Unlock()
		}
	}
}

func (b *Bus) closeAll() {
	b.subsAllMutex.Lock()
	for _, sub := range b.subsAll {
		close(sub)
	}
	b.subsAll = nil
	b.subsAllMutex.Unlock()

	b.subsMutex.Lock()
	for topic, subz := range b.subs {
		for _, sub := range subz {
			close(sub)
		}
		delete(b.subs, topic)
	}
	b.subsMutex.Unlock()
}

// Publish never blocks. It returns ErrFull when the bus is backed up.
func (b *Bus) Publish(topic string, data float64) error {
	select {
	case <-b.quit:
		return nil
	default:
	}
	select {
	case b.inChan <- Message{Topic: topic, Data: data}:
		return nil
	default:
		return ErrFull
	}
}

// Last returns the cached value of topic.
func (b *Bus) Last(topic string) (float64, bool) {
	if itm := b.cache.Get(topic); itm != nil {
		return itm.Value(), true
	}
	return 0, false
}

// SubscribeAll returns a channel receiving every topic. After Close the
// channel comes back already closed.
func (b *Bus) SubscribeAll() chan Message {
	respChan := make(chan Message, 100)
	b.subsAllMutex.Lock()
	defer b.subsAllMutex.Unlock()
	if b.isClosed() {
		close(respChan)
		return respChan
	}
	b.subsAll = append(b.subsAll, respChan)

	b.cache.Range(func(item *ttlcache.Item[string, float64]) bool {
		select {
		case respChan <- Message{Topic: item.Key(), Data: item.Value()}:
			return true
		default:
			return false
		}
	})
	return respChan
}

func (b *Bus) isClosed() bool {
	select {
	case <-b.quit:
		return true
	default:
		return false
	}
}

// SubscribeAllFunc returns a function that can be used to unsubscribe.
func (b *Bus) SubscribeAllFunc(f func(topic string, value float64)) func() {
	respChan := b.SubscribeAll()
	go func() {
		for v := range respChan {
			f(v.Topic, v.Data)
		}
	}()
	return func() {
		b.UnsubscribeAll(respChan)
	}
}

func (b *Bus) UnsubscribeAll(channel chan Message) {
	select {
	case b.unsubAllChan <- channel:
	case <-b.quit:
	}
}

// SubscribeFunc returns a function that can be used to unsubscribe the function
func (b *Bus) SubscribeFunc(topic string, f func(float64)) func() {
	respChan := b.Subscribe(topic)
	go func() {
		for v := range respChan {
			f(v)
		}
	}()
	return func() {
		b.Unsubscribe(respChan)
	}
}

// Subscribe returns a channel receiving topic, starting with its cached
// value. After Close the channel comes back already closed.
func (b *Bus) Subscribe(topic string) chan float64 {
	log.Debugln("Subscribe", topic)
	respChan := make(chan float64, 100)
	b.subsMutex.Lock()
	defer b.subsMutex.Unlock()
	if b.isClosed() {
		close(respChan)
		return respChan
	}
	b.subs[topic] = append(b.subs[topic], respChan)
	if itm := b.cache.Get(topic); itm != nil {
		respChan <- itm.Value()
	}
	return respChan
}

func (b *Bus) Unsubscribe(channel chan float64) {
	select {
	case b.unsubChan <- channel:
	case <-b.quit:
	}
}
