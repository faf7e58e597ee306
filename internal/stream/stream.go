package stream

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"upnd.org/internal/jurisdiction"
)

// Location is an approximate geographical point used for visualisation.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// RegistrationEvent describes a membership event pinned to a province for
// the live map stream.
type RegistrationEvent struct {
	Kind      string    `json:"kind"` // "registered" or "approved"
	Province  Location  `json:"province"`
	District  string    `json:"district,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs registration events to all active SSE subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan RegistrationEvent
	next int
	rnd  *rand.Rand
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{
		subs: make(map[int]chan RegistrationEvent),
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan RegistrationEvent {
	ch := make(chan RegistrationEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt RegistrationEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// ProvinceLocation maps a province name to its plotted point. Unknown
// provinces get a zero location with the name preserved.
func ProvinceLocation(province string) Location {
	coords, ok := jurisdiction.CoordinatesFor(province)
	if !ok {
		return Location{Name: province}
	}
	return Location{Name: province, Lat: coords.Lat, Lon: coords.Lon}
}

// Registered builds an event for a fresh registration.
func Registered(province, district, status string, at time.Time) RegistrationEvent {
	return RegistrationEvent{
		Kind:      "registered",
		Province:  ProvinceLocation(province),
		District:  district,
		Status:    status,
		Timestamp: at.UTC(),
	}
}

// RandomDemoEvent creates an artificial registration for demo purposes.
func (s *Stream) RandomDemoEvent() RegistrationEvent {
	provinces := jurisdiction.Provinces()
	if len(provinces) == 0 {
		return RegistrationEvent{Kind: "registered", Timestamp: time.Now().UTC()}
	}
	province := provinces[s.rnd.Intn(len(provinces))]
	districts := jurisdiction.DistrictsFor(province)
	district := ""
	if len(districts) > 0 {
		district = districts[s.rnd.Intn(len(districts))]
	}
	kind := "registered"
	status := "Pending Section Review"
	if s.rnd.Intn(4) == 0 {
		kind = "approved"
		status = "Approved"
	}
	return RegistrationEvent{
		Kind:      kind,
		Province:  ProvinceLocation(province),
		District:  district,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

// StartDemo emits random events at the provided interval until the returned
// stop function is called.
func (s *Stream) StartDemo(interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Publish(s.RandomDemoEvent())
			}
		}
	}()
	return cancel
}
