package ble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyConnected = errors.New("ble: a peripheral is already connected")
	ErrNotConnected     = errors.New("ble: no peripheral connected")
)

// Transport abstracts the radio. The real adapter lives outside this module
// (the mobile shell provides it); tests use an in-memory fake.
type Transport interface {
	// Connect establishes a connection to the peripheral and returns once
	// services are discovered. It must respect ctx cancellation.
	Connect(ctx context.Context, peripheralID string) error
	// Subscribe starts notifications on the characteristic, invoking fn for
	// every value. The returned stop function ends the subscription.
	Subscribe(serviceUUID, charUUID string, fn func([]byte)) (stop func() error, err error)
	// Disconnect tears the connection down.
	Disconnect() error
}

// Sink receives decoded readings. The vitals service implements it so
// device readings travel the same write path as manual entries.
type Sink interface {
	RecordHeartRate(ctx context.Context, userID uuid.UUID, bpm int) error
}

const readingsBuffer = 16

// Session owns at most one peripheral connection and a bounded stream of
// heart-rate readings. When the consumer falls behind, the oldest buffered
// reading is dropped in favor of the newest.
type Session struct {
	transport      Transport
	logger         zerolog.Logger
	connectTimeout time.Duration

	mu        sync.Mutex
	connected bool
	stop      func() error
	readings  chan Measurement
}

func NewSession(transport Transport, connectTimeout time.Duration, logger zerolog.Logger) *Session {
	if connectTimeout <= 0 {
		connectTimeout = 15 * time.Second
	}
	return &Session{
		transport:      transport,
		logger:         logger,
		connectTimeout: connectTimeout,
	}
}

// Subscribe connects to the peripheral and starts streaming heart-rate
// measurements. Only one peripheral may be connected per session.
func (s *Session) Subscribe(ctx context.Context, peripheralID string) (<-chan Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil, ErrAlreadyConnected
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	if err := s.transport.Connect(connectCtx, peripheralID); err != nil {
		return nil, err
	}

	readings := make(chan Measurement, readingsBuffer)
	stop, err := s.transport.Subscribe(HeartRateServiceUUID, HeartRateMeasurementUUID, func(buf []byte) {
		m, err := DecodeHeartRate(buf)
		if err != nil {
			s.logger.Warn().Err(err).Msg("dropping malformed heart rate packet")
			return
		}
		s.offer(readings, m)
	})
	if err != nil {
		_ = s.transport.Disconnect()
		return nil, err
	}

	s.connected = true
	s.stop = stop
	s.readings = readings
	return readings, nil
}

// offer enqueues a reading, evicting the oldest buffered one on overflow.
func (s *Session) offer(ch chan Measurement, m Measurement) {
	for {
		select {
		case ch <- m:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Unsubscribe stops notifications and disconnects the peripheral.
func (s *Session) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrNotConnected
	}
	var err error
	if s.stop != nil {
		err = s.stop()
	}
	if derr := s.transport.Disconnect(); err == nil {
		err = derr
	}
	close(s.readings)
	s.connected = false
	s.stop = nil
	s.readings = nil
	return err
}

// Run consumes the readings channel and writes each measurement through the
// sink until the channel closes or ctx is cancelled. Write failures are
// logged and the stream continues; a flaky network must not kill the
// subscription.
func (s *Session) Run(ctx context.Context, userID uuid.UUID, sink Sink, readings <-chan Measurement) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-readings:
			if !ok {
				return
			}
			if err := sink.RecordHeartRate(ctx, userID, m.BPM); err != nil {
				s.logger.Error().Err(err).Int("bpm", m.BPM).Msg("failed to record device heart rate")
			}
		}
	}
}
