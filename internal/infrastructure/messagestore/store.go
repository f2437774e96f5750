package messagestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/rs/zerolog/log"
)

// Store is the in-memory mirror of the host's per-channel message cache.
// The host pushes its cache here; readers never trigger network calls.
type Store struct {
	mu       sync.RWMutex
	capacity int
	channels map[string][]models.HostMessage
	now      func() time.Time
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		channels: make(map[string][]models.HostMessage),
		now:      time.Now,
	}
}

// Replace swaps the cached messages of a channel for the given ones
func (s *Store) Replace(ctx context.Context, channelID string, messages []models.HostMessage) {
	cached := make([]models.HostMessage, len(messages))
	copy(cached, messages)
	received := s.now()
	for i := range cached {
		cached[i].ChannelID = channelID
		if cached[i].Timestamp.IsZero() {
			cached[i].Timestamp = received
		}
	}
	sortByTime(cached)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[channelID] = s.trim(cached)

	log.Debug().
		Str("channel_id", channelID).
		Int("message_count", len(s.channels[channelID])).
		Msg("Replaced channel message cache")
}

// Put inserts a message, or updates it in place when the id is already cached.
// A message without a timestamp is dated when it arrives; an edit without one
// keeps the original.
func (s *Store) Put(ctx context.Context, channelID string, message models.HostMessage) {
	message.ChannelID = channelID

	s.mu.Lock()
	defer s.mu.Unlock()

	cached := s.channels[channelID]
	for i := range cached {
		if cached[i].ID == message.ID {
			if message.Timestamp.IsZero() {
				message.Timestamp = cached[i].Timestamp
			}
			cached[i] = message
			return
		}
	}

	if message.Timestamp.IsZero() {
		message.Timestamp = s.now()
	}
	cached = append(cached, message)
	sortByTime(cached)
	s.channels[channelID] = s.trim(cached)
}

// Recent returns up to limit of the newest messages of a channel, oldest first
func (s *Store) Recent(ctx context.Context, channelID string, limit int) ([]models.HostMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return tail(s.channels[channelID], len(s.channels[channelID]), limit), nil
}

// Until returns up to limit messages ending with messageID, oldest first.
// The boolean reports whether the anchor message was found.
func (s *Store) Until(ctx context.Context, channelID, messageID string, limit int) ([]models.HostMessage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cached := s.channels[channelID]
	for i := range cached {
		if cached[i].ID == messageID {
			return tail(cached, i+1, limit), true, nil
		}
	}
	return nil, false, nil
}

// Len returns the number of cached messages of a channel
func (s *Store) Len(channelID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels[channelID])
}

func (s *Store) trim(messages []models.HostMessage) []models.HostMessage {
	if len(messages) <= s.capacity {
		return messages
	}
	return append([]models.HostMessage(nil), messages[len(messages)-s.capacity:]...)
}

// tail copies up to limit messages ending right before end
func tail(messages []models.HostMessage, end, limit int) []models.HostMessage {
	if limit <= 0 || end == 0 {
		return []models.HostMessage{}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]models.HostMessage, end-start)
	copy(out, messages[start:end])
	return out
}

func sortByTime(messages []models.HostMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}
