package resolver

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rostsocial/rost/model"
)

const signalChannelBuffer = 8

var ErrNoActiveConnection = errors.New("no active connection")

// SignalChannels contains all structures that handles viewer's signal channel.
// All internal state should not be handled directly by hand by managed by its
// public receivers.
type SignalChannels struct {
	// connectionMap maps from viewer id to the viewer's active signal channels.
	// Viewer's active channels are represented in the form of a map from channel
	// id (uuid) to the actual channel. This is needed so that deletion of channel
	// is O(1).
	// Each connectionMap entry will be deleted once all viewer's active channels
	// are closed.
	// Multiple devices of one viewer cannot share the same channel, each
	// websocket gets its own.
	connectionMap map[string]map[string]chan *model.Signal

	// Adding/Removing a new subscription must grab WriteLock, while all other
	// usage (e.g. pushing a new Signal) should grab a ReadLock. Ideally we
	// should create lock per-viewer but we can start from a shared lock in the
	// beginning for simplicity.
	mu sync.RWMutex
}

func NewSignalChannels() *SignalChannels {
	return &SignalChannels{
		connectionMap: make(map[string]map[string]chan *model.Signal),
	}
}

// cleanUp a single connection when the context terminates. If a viewer's all
// active connections terminates, clean up the viewer's top-level entry as well.
func (sc *SignalChannels) cleanUp(ctx context.Context, chID string, viewerID string) {
	<-ctx.Done()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	delete(sc.connectionMap[viewerID], chID)
	if len(sc.connectionMap[viewerID]) == 0 {
		delete(sc.connectionMap, viewerID)
	}
}

// Thread-safe
func (sc *SignalChannels) AddNewConnection(ctx context.Context, viewerID string) (<-chan *model.Signal, string) {
	chID := "signal_channel_" + uuid.New().String()
	ch := make(chan *model.Signal, signalChannelBuffer)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, ok := sc.connectionMap[viewerID]; !ok {
		sc.connectionMap[viewerID] = make(map[string]chan *model.Signal)
	}

	sc.connectionMap[viewerID][chID] = ch

	// Spin up a background grabage collector.
	go sc.cleanUp(ctx, chID, viewerID)

	return ch, chID
}

// Thread-safe
func (sc *SignalChannels) GetActiveConnectionsCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	count := 0
	for _, mp := range sc.connectionMap {
		count += len(mp)
	}
	return count
}

// PushSignalToUser sends signal to every connection of viewerID. Signals are
// hints, a connection whose buffer is full drops them. Thread-safe.
func (sc *SignalChannels) PushSignalToUser(signal *model.Signal, viewerID string) error {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	viewerChannels, ok := sc.connectionMap[viewerID]
	if !ok {
		return errors.Wrap(ErrNoActiveConnection, viewerID)
	}
	for _, ch := range viewerChannels {
		select {
		case ch <- signal:
		default:
		}
	}
	return nil
}
