package websocket

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/CUknot/social_backend/metrics"
	"github.com/CUknot/social_backend/models"
	"github.com/sirupsen/logrus"
)

// ErrNotRegistered is returned by Publish when the sender is not attached to the room
var ErrNotRegistered = errors.New("sender is not registered in the room")

// RoomKey identifies a chat room: a direct conversation or a group
type RoomKey string

// DirectRoom returns the same key for (a, b) and (b, a)
func DirectRoom(a, b uint) RoomKey {
	return RoomKey(metrics.KindDirect + ":" + models.PairKey(a, b))
}

func GroupRoom(groupID uint) RoomKey {
	return RoomKey(fmt.Sprintf("%s:%d", metrics.KindGroup, groupID))
}

// Kind is either metrics.KindDirect or metrics.KindGroup
func (k RoomKey) Kind() string {
	kind, _, _ := strings.Cut(string(k), ":")
	return kind
}

// Registrant is a live connection attached to a room
type Registrant interface {
	UserID() uint
	// Enqueue hands payload to the connection without blocking. It reports
	// false when the connection can no longer accept frames.
	Enqueue(payload []byte) bool
}

type room struct {
	// publish serializes persist and fan-out within the room
	publish sync.Mutex
	members map[Registrant]struct{}
}

// Registry maps room keys to the connections currently attached to them
type Registry struct {
	mu      sync.RWMutex
	rooms   map[RoomKey]*room
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewRegistry(log logrus.FieldLogger, m *metrics.Metrics) *Registry {
	return &Registry{
		rooms:   make(map[RoomKey]*room),
		log:     log,
		metrics: m,
	}
}

// Join attaches r to the room, creating the room on first use
func (reg *Registry) Join(key RoomKey, r Registrant) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[key]
	if !ok {
		rm = &room{members: make(map[Registrant]struct{})}
		reg.rooms[key] = rm
	}
	if _, ok := rm.members[r]; ok {
		return
	}
	rm.members[r] = struct{}{}
	reg.metrics.Registrants.Inc()

	reg.log.WithFields(logrus.Fields{"room": key, "user_id": r.UserID()}).Debug("Joined room")
}

// Leave detaches r from the room. The room is released once empty.
func (reg *Registry) Leave(key RoomKey, r Registrant) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.leaveLocked(key, r)
}

func (reg *Registry) leaveLocked(key RoomKey, r Registrant) bool {
	rm, ok := reg.rooms[key]
	if !ok {
		return false
	}
	if _, ok := rm.members[r]; !ok {
		return false
	}
	delete(rm.members, r)
	reg.metrics.Registrants.Dec()
	if len(rm.members) == 0 {
		delete(reg.rooms, key)
	}

	reg.log.WithFields(logrus.Fields{"room": key, "user_id": r.UserID()}).Debug("Left room")
	return true
}

// Registrants returns the number of connections attached to the room
func (reg *Registry) Registrants(key RoomKey) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if rm, ok := reg.rooms[key]; ok {
		return len(rm.members)
	}
	return 0
}

// Publish runs persist and hands the frame it returns to every connection in
// the room, sender included. Nothing is persisted unless sender is attached.
// Connections that fail to accept the frame are evicted. Publishes to the
// same room are delivered in the order they were persisted.
func (reg *Registry) Publish(key RoomKey, sender Registrant, persist func() ([]byte, error)) (int, error) {
	reg.mu.RLock()
	rm, ok := reg.rooms[key]
	reg.mu.RUnlock()
	if !ok {
		return 0, ErrNotRegistered
	}

	rm.publish.Lock()
	defer rm.publish.Unlock()

	reg.mu.RLock()
	_, registered := rm.members[sender]
	reg.mu.RUnlock()
	if !registered {
		return 0, ErrNotRegistered
	}

	payload, err := persist()
	if err != nil {
		return 0, err
	}
	reg.metrics.MessagesPersisted.WithLabelValues(key.Kind()).Inc()

	reg.mu.RLock()
	targets := make([]Registrant, 0, len(rm.members))
	for r := range rm.members {
		targets = append(targets, r)
	}
	reg.mu.RUnlock()

	var delivered int
	var failed []Registrant
	for _, r := range targets {
		if r.Enqueue(payload) {
			delivered++
			continue
		}
		failed = append(failed, r)
	}
	reg.metrics.LiveDeliveries.WithLabelValues(key.Kind()).Add(float64(delivered))

	if len(failed) > 0 {
		reg.mu.Lock()
		for _, r := range failed {
			if reg.leaveLocked(key, r) {
				reg.metrics.Evictions.Inc()
				reg.log.WithFields(logrus.Fields{"room": key, "user_id": r.UserID()}).Warn("Evicted unresponsive connection")
			}
		}
		reg.mu.Unlock()
	}

	return delivered, nil
}
