package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// PushEvent is a reservation hint delivered out of band over the realtime
// channel. The core treats these as untrusted hints, not authority.
type PushEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	ShowID    string    `json:"show_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

const (
	PushReservationExpired  = "reservation-expired"
	PushReservationExtended = "reservation-extended"
)

// RealtimeService subscribes to the reservation event channel on redis and
// routes every event to the session it belongs to.
type RealtimeService struct {
	client  *redis.Client
	channel string
	route   func(event PushEvent)
}

// NewRealtimeService wires the subscriber. route is called for every
// successfully parsed event.
func NewRealtimeService(client *redis.Client, channel string, route func(event PushEvent)) *RealtimeService {
	return &RealtimeService{client: client, channel: channel, route: route}
}

// Start runs the subscription loop until the context is cancelled.
func (s *RealtimeService) Start(ctx context.Context) {
	sub := s.client.Subscribe(ctx, s.channel)
	go func() {
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}
				s.handleMessage(message.Payload)
			}
		}
	}()
}

// handleMessage parses one payload and routes it. Malformed payloads are
// logged and dropped; push events are advisory only.
func (s *RealtimeService) handleMessage(payload string) {
	var event PushEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("Dropping malformed push event: %v", err)
		return
	}
	if event.SessionID == "" {
		log.Printf("Dropping push event without session id (type %q)", event.Type)
		return
	}
	s.route(event)
}

// Publish sends one event into the channel. The mock backends use this to
// emulate server pushes.
func (s *RealtimeService) Publish(ctx context.Context, event PushEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}

// HealthCheck verifies the redis connection backing the push channel.
func (s *RealtimeService) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
