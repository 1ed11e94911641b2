// Package playback implements the chart playback core: a
// segmented time→Y integrator that advances a scroll coordinate under
// piecewise-constant tempo, speed and scroll multipliers and a global
// playback-rate scalar, emitting events inside a configurable lookahead
// window. It never mutates its precomputed input; it only walks it.
package playback

import (
	"sort"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chartevent"
	"github.com/nitro-chart/bmscore/internal/precompute"
)

// epsilon is the velocity floor: the integrator never divides by, or
// advances at, a non-positive velocity.
var epsilon = bmstime.NewFromFloat(1e-9)

// VisibleRangePerBpm configures how far ahead of the playhead events are
// preloaded, expressed relative to a reference tempo.
type VisibleRangePerBpm struct {
	BaseBPM              bmstime.Decimal
	ReactionTimeSeconds  bmstime.Decimal
}

// DefaultVisibleRange gives a 120 BPM chart a window of one Y unit (one
// measure, two seconds of travel at 120 BPM) of lookahead.
func DefaultVisibleRange() VisibleRangePerBpm {
	return VisibleRangePerBpm{BaseBPM: bmstime.NewFromInt(120), ReactionTimeSeconds: bmstime.NewFromFloat(1.0)}
}

// State is the integrator's run state: Unstarted until start_play, then
// Playing for the remainder of its life.
type State int

const (
	Unstarted State = iota
	Playing
)

// VisibleEvent is a preloaded event paired with its display-ratio window
// along the scroll axis.
type VisibleEvent struct {
	Event chartevent.PlayheadEvent
	Start bmstime.Decimal
	End   bmstime.Decimal
}

// Core is the playback integrator. Zero value is not usable; construct with
// New.
type Core struct {
	index *precompute.Index

	state       State
	startedAt   bmstime.TimeStamp
	hasStarted  bool
	lastPollAt  bmstime.TimeStamp
	hasPolled   bool
	progressedY bmstime.Y

	currentBPM    bmstime.Decimal
	currentScroll bmstime.Decimal
	currentSpeed  bmstime.Decimal
	playbackRatio bmstime.Decimal

	visibleRange VisibleRangePerBpm

	cachedVelocity bmstime.Decimal
	velocityDirty  bool

	flowIdx   int
	preloaded []chartevent.PlayheadEvent
}

// New builds a Core over a precomputed index, with the chart's initial
// tempo and default scroll/speed/ratio.
func New(index *precompute.Index) *Core {
	c := &Core{
		index:         index,
		currentBPM:    index.InitialBPM,
		currentScroll: orOne(index.InitialScroll),
		currentSpeed:  orOne(index.InitialSpeed),
		playbackRatio: bmstime.One,
		visibleRange:  DefaultVisibleRange(),
	}
	c.velocityDirty = true
	return c
}

func orOne(d bmstime.Decimal) bmstime.Decimal {
	if d.IsZero() {
		return bmstime.One
	}
	return d
}

// StartPlay transitions Unstarted → Playing, resetting progress and tempo
// to the chart's initial state. Calling it again re-enters
// Playing from zero.
func (c *Core) StartPlay(now bmstime.TimeStamp) {
	c.state = Playing
	c.startedAt = now
	c.hasStarted = true
	c.lastPollAt = now
	c.hasPolled = true
	c.progressedY = bmstime.Zero
	c.flowIdx = 0
	c.preloaded = nil
	c.currentBPM = c.index.InitialBPM
	c.currentScroll = bmstime.One
	c.currentSpeed = bmstime.One
	c.velocityDirty = true
}

// Reset returns to Unstarted, preserving the current tempo/scroll/speed
// values.
func (c *Core) Reset() {
	c.state = Unstarted
	c.hasStarted = false
	c.hasPolled = false
	c.progressedY = bmstime.Zero
	c.flowIdx = 0
	c.preloaded = nil
}

func (c *Core) State() State { return c.state }

// SetPlaybackRatio is a control event: updates the global time-warp scalar
// and marks velocity dirty.
func (c *Core) SetPlaybackRatio(ratio bmstime.Decimal) {
	c.playbackRatio = ratio
	c.velocityDirty = true
}

// SetVisibleRangePerBpm replaces the lookahead window configuration.
func (c *Core) SetVisibleRangePerBpm(cfg VisibleRangePerBpm) {
	c.visibleRange = cfg
}

// velocity returns Y-units-per-second at the current tempo/speed/ratio,
// floored at epsilon, recomputing only when marked dirty.
func (c *Core) velocity() bmstime.Decimal {
	if !c.velocityDirty {
		return c.cachedVelocity
	}
	v := c.currentBPM.Div(bmstime.NewFromInt(240)).Mul(c.currentSpeed).Mul(c.playbackRatio)
	if v.LessThanOrEqual(bmstime.Zero) {
		v = epsilon
	}
	c.cachedVelocity = v
	c.velocityDirty = false
	return v
}

// windowY is the visible-window length in Y at the current tempo.
func (c *Core) windowY() bmstime.Decimal {
	if c.visibleRange.BaseBPM.IsZero() {
		return bmstime.Zero
	}
	return c.currentBPM.Div(c.visibleRange.BaseBPM).
		Mul(c.visibleRange.ReactionTimeSeconds).
		Mul(c.currentSpeed).Mul(c.playbackRatio)
}

// flowEventAt returns the next unconsumed flow event starting the scan at
// idx, and the index to resume the next scan from. flow_events_by_y is
// conceptually a map<Y,[]FlowEvent>; the precomputed index instead stores
// one Y-sorted slice, so several entries can legitimately share a Y (a
// BPM+scroll pair, or a scroll-by-id and speed-by-id folded from the same
// arranger message) and every one of them must be applied, not just the
// first: every BMS/BMSON chart has at most a few hundred flow events, so a
// linear scan costs nothing.
func (c *Core) flowEventAt(idx int) (chartevent.FlowEventEntry, int, bool) {
	if idx >= len(c.index.FlowEvents) {
		return chartevent.FlowEventEntry{}, idx, false
	}
	return c.index.FlowEvents[idx], idx + 1, true
}

func (c *Core) applyFlowEvent(e chartevent.FlowEvent) {
	switch ev := e.(type) {
	case chartevent.BpmFlow:
		c.currentBPM = ev.BPM
		c.velocityDirty = true
	case chartevent.SpeedFlow:
		c.currentSpeed = ev.Factor
		c.velocityDirty = true
	case chartevent.ScrollFlow:
		c.currentScroll = ev.Factor
	}
}

// StepTo advances progressedY to the state it should have at now,
// crossing every flow event boundary along the way (
// "step_to(now)"). A non-increasing now is a no-op.
func (c *Core) StepTo(now bmstime.TimeStamp) {
	if !c.hasStarted {
		return
	}
	if c.hasPolled && !now.After(c.lastPollAt) {
		return
	}
	remaining := bmstime.NewFromInt(now.Sub(c.lastPollAt).Nanoseconds()).Div(bmstime.NewFromInt(1e9))
	curY := c.progressedY

	for {
		curVel := c.velocity()
		next, nextIdx, ok := c.flowEventAt(c.flowIdx)
		if !ok || curVel.LessThanOrEqual(bmstime.Zero) || remaining.LessThanOrEqual(bmstime.Zero) {
			curY = curY.Add(curVel.Mul(remaining))
			break
		}
		if !next.Position.GreaterThan(curY) {
			// Tie/edge: next is already at or behind curY (either it never
			// moved curY forward, or a prior iteration landed exactly on
			// it), so it applies immediately without consuming any time.
			// Advancing the cursor here, rather than re-deriving "the next
			// event after curY" by position, is what lets every sibling
			// flow event sharing this Y apply in turn instead of only the
			// first.
			c.flowIdx = nextIdx
			c.applyFlowEvent(next.Event)
			continue
		}
		distance := next.Position.Sub(curY)
		timeToEvent := distance.Div(curVel)
		if timeToEvent.LessThanOrEqual(remaining) {
			curY = next.Position
			remaining = remaining.Sub(timeToEvent)
			c.flowIdx = nextIdx
			c.applyFlowEvent(next.Event)
			continue
		}
		curY = curY.Add(curVel.Mul(remaining))
		break
	}

	c.progressedY = curY
	c.lastPollAt = now
	c.hasPolled = true
}

// Update advances the integrator to now and returns the triggered events
// (those newly crossed since the previous Update/StepTo) in
// Y-then-id order, while refreshing the preload window (
// "update(now)").
func (c *Core) Update(now bmstime.TimeStamp) []chartevent.PlayheadEvent {
	prevY := c.progressedY
	c.StepTo(now)
	curY := c.progressedY

	var triggered []chartevent.PlayheadEvent
	for _, e := range c.index.AllEvents {
		if e.Position.GreaterThan(prevY) && !e.Position.GreaterThan(curY) {
			triggered = append(triggered, e)
		}
	}
	sort.SliceStable(triggered, func(i, j int) bool {
		if triggered[i].Position.Equal(triggered[j].Position) {
			return triggered[i].ID < triggered[j].ID
		}
		return triggered[i].Position.LessThan(triggered[j].Position)
	})

	windowY := c.windowY()
	c.preloaded = c.preloaded[:0]
	for _, e := range c.index.AllEvents {
		if e.Position.GreaterThan(curY) && !e.Position.GreaterThan(curY.Add(windowY)) {
			c.preloaded = append(c.preloaded, e)
		}
	}

	return triggered
}

// VisibleEvents returns the current preload window with each event's
// display-ratio range along the scroll axis.
func (c *Core) VisibleEvents() []VisibleEvent {
	curY := c.progressedY
	windowY := c.windowY()
	out := make([]VisibleEvent, 0, len(c.preloaded))
	for _, e := range c.preloaded {
		var start, end bmstime.Decimal
		if windowY.LessThanOrEqual(bmstime.Zero) {
			start, end = bmstime.Zero, bmstime.Zero
		} else {
			start = e.Position.Sub(curY).Div(windowY).Mul(c.currentScroll)
			end = start
			if n, ok := e.Event.(chartevent.Note); ok && n.Length != nil {
				endY := e.Position.Add(*n.Length)
				end = endY.Sub(curY).Div(windowY).Mul(c.currentScroll)
			}
		}
		out = append(out, VisibleEvent{Event: e, Start: start, End: end})
	}
	return out
}

// ProgressedY is the current scroll-axis position.
func (c *Core) ProgressedY() bmstime.Y { return c.progressedY }
