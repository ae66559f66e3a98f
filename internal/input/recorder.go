// Package input captures local player intent into netstate.PlayerInput
// samples and paces how often they are sent to the server.
package input

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hknc0/orbit/internal/netstate"
	"github.com/hknc0/orbit/internal/vecmath"
)

// SessionID is a client-generated identifier sent once at join time so the
// server can correlate reconnects within the same play session. It has no
// bearing on netstate semantics; it exists purely for the server's logs.
type SessionID = uuid.UUID

// NewSessionID generates a fresh session identifier.
func NewSessionID() SessionID {
	return uuid.New()
}

// Recorder builds PlayerInput samples from raw control state and decides,
// via a token-bucket limiter, whether the current sample should actually be
// sent — this bounds the client's outbound message rate independent of how
// fast its input-polling loop runs.
type Recorder struct {
	limiter  *rate.Limiter
	sequence uint64
}

// NewRecorder creates a Recorder that allows up to sendsPerSecond input
// sends per second, with a burst of burst.
func NewRecorder(sendsPerSecond float64, burst int) *Recorder {
	return &Recorder{limiter: rate.NewLimiter(rate.Limit(sendsPerSecond), burst)}
}

// Sample builds the next PlayerInput from raw control state. tick is the
// client's best estimate of the current server tick and clientTime is the
// local send timestamp, echoed back by the server for RTT measurement.
func (r *Recorder) Sample(tick netstate.Tick, clientTime int64, thrust, aim vecmath.Vector, boost, fire, fireReleased bool) netstate.PlayerInput {
	r.sequence++
	return netstate.PlayerInput{
		Sequence:     r.sequence,
		Tick:         tick,
		ClientTime:   clientTime,
		Thrust:       thrust,
		Aim:          aim,
		Boost:        boost,
		Fire:         fire,
		FireReleased: fireReleased,
	}
}

// Allow reports whether the caller should send now, consuming one token
// from the rate limiter if so. Callers that get false should still pass the
// sample to the local predictor — only the network send is paced.
func (r *Recorder) Allow() bool {
	return r.limiter.Allow()
}

// AllowAt is Allow evaluated against an explicit time, for deterministic
// tests.
func (r *Recorder) AllowAt(t time.Time) bool {
	return r.limiter.AllowN(t, 1)
}
