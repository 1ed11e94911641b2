// Package precompute flattens a chart.Chart's semantic model into the
// Y-indexed event table the playback core integrates over: every note,
// BGM hit, barline and control change gets a precomputed Y position and an
// absolute activation time under the chart's own tempo/stop history.
package precompute

import (
	"sort"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/chartevent"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/keylayout"
	"github.com/nitro-chart/bmscore/internal/notes"
	"github.com/nitro-chart/bmscore/internal/objid"
)

// Index is the precomputed playback input: every chart event in Y order,
// every flow event (tempo/speed/scroll changes) in Y order, and
// the chart's initial velocity-affecting state.
type Index struct {
	AllEvents  []chartevent.PlayheadEvent
	FlowEvents []chartevent.FlowEventEntry

	InitialBPM    bmstime.Decimal
	InitialScroll bmstime.Decimal
	InitialSpeed  bmstime.Decimal
}

// segment is one piecewise-constant span of the timeline: starts at Y
// startY / time startTime, running at bpm until the next tempo-affecting
// change.
type segment struct {
	startY    bmstime.Y
	startTime bmstime.TimeSpan
	bpm       bmstime.Decimal
}

type arrangerAt struct {
	y  bmstime.Y
	ev *chart.ArrangerEvent
}

// Build walks every track in the chart in Y order, accumulating elapsed
// time under the BPM/stop history active at each point, and emits one
// PlayheadEvent per chart object plus a synthetic barline at the start of
// every track.
func Build(c *chart.Chart, layout keylayout.Dictionary) (*Index, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	idx := &Index{InitialBPM: c.Header.BPM, InitialScroll: bmstime.One, InitialSpeed: bmstime.One}

	toY := func(t bmstime.ObjTime) bmstime.Y {
		base := bmstime.NewFromInt(int64(t.Track))
		return base.Add(t.Fraction().Mul(sectionLength(c, t.Track)))
	}

	var arrangers []arrangerAt
	for _, t := range c.SortedArrangerTimes() {
		arrangers = append(arrangers, arrangerAt{y: toY(t), ev: c.Arrangers[t]})
	}
	sort.Slice(arrangers, func(i, j int) bool { return arrangers[i].y.LessThan(arrangers[j].y) })

	segs := buildSegments(arrangers, c.Header.BPM)

	activateAt := func(y bmstime.Y) bmstime.TimeSpan {
		return activateTime(segs, y)
	}

	var nextID uint64
	emit := func(y bmstime.Y, ev chartevent.ChartEvent) {
		idx.AllEvents = append(idx.AllEvents, chartevent.PlayheadEvent{
			ID: nextID, Position: y, ActivateTime: activateAt(y), Event: ev,
		})
		nextID++
	}

	for _, a := range arrangers {
		if a.ev.BPM != nil {
			idx.FlowEvents = append(idx.FlowEvents, chartevent.FlowEventEntry{Position: a.y, Event: chartevent.BpmFlow{BPM: *a.ev.BPM}})
			emit(a.y, chartevent.BpmChange{BPM: *a.ev.BPM})
		}
		if a.ev.ScrollFactor != nil {
			idx.FlowEvents = append(idx.FlowEvents, chartevent.FlowEventEntry{Position: a.y, Event: chartevent.ScrollFlow{Factor: *a.ev.ScrollFactor}})
			emit(a.y, chartevent.ScrollChange{Factor: *a.ev.ScrollFactor})
		}
		if a.ev.SpeedFactor != nil {
			idx.FlowEvents = append(idx.FlowEvents, chartevent.FlowEventEntry{Position: a.y, Event: chartevent.SpeedFlow{Factor: *a.ev.SpeedFactor}})
			emit(a.y, chartevent.SpeedChange{Factor: *a.ev.SpeedFactor})
		}
		if a.ev.Stop != nil {
			// STOP units are 192nd notes; ÷48 folds to beats (quarter notes)
			// under the 4/4 assumption documented for this module.
			beats := a.ev.Stop.Div(bmstime.NewFromInt(48))
			emit(a.y, chartevent.Stop{DurationInBeats: beats})
		}
	}

	var maxTrack bmstime.Track = c.MaxTrack()
	for tr := bmstime.Track(0); tr <= maxTrack; tr++ {
		emit(toY(bmstime.NewObjTime(tr, 0, 1)), chartevent.BarLine{})
	}

	// lastNonContinue tracks, per sound channel (wav id), the activation
	// time of the most recent note that did not carry the BMSON continue
	// flag. A continue note's ContinuePlay is the elapsed time since that
	// note, or since playback start if the channel has not played yet.
	lastNonContinue := map[objid.ID]bmstime.TimeSpan{}
	continuePlayFor := func(wavID objid.ID, isContinue bool, activation bmstime.TimeSpan) *bmstime.TimeSpan {
		if !isContinue {
			lastNonContinue[wavID] = activation
			return nil
		}
		delta := activation.Sub(lastNonContinue[wavID])
		return &delta
	}

	lnLengths, lnSkip := lnobjLengths(c, toY)

	for _, o := range c.Notes.SortedByOffset() {
		y := toY(o.Offset)
		activation := activateAt(y)
		if o.ChannelID == "01" || o.ChannelID == "BGM" {
			cp := continuePlayFor(o.WavID, o.Continue, activation)
			emit(y, chartevent.Bgm{WavID: o.WavID, ContinuePlay: cp})
			continue
		}
		if lnSkip[noteKey{o.ChannelID, o.Offset}] {
			// The #LNOBJ closing marker only carries length information; it
			// is folded into the opening note below instead of playing as
			// its own hit.
			continue
		}
		var side chartevent.Side
		var key int
		if lane, ok := bmsonLane(o.ChannelID); ok {
			// BMSON notes carry a synthetic "X<lane>" channel id assigned
			// by the ingester, not a BMS two-character channel code, so
			// they bypass the BMS key-layout dictionary entirely and use
			// the lane number directly.
			side, key = chartevent.Side1P, lane
		} else {
			var ok bool
			side, key, ok = layout.Lookup(o.ChannelID)
			if !ok {
				diags = append(diags, diag.Warn(diag.StagePrecompute, diag.CategoryValidityWarning,
					"W_PRECOMPUTE_UNRESOLVED_CHANNEL", "note on channel "+o.ChannelID+" has no key-layout mapping", diag.Range{}))
				continue
			}
		}
		kind := chartevent.KindVisible
		var length *bmstime.Decimal
		if o.LengthY != nil && o.LengthY.Sign() > 0 {
			kind = chartevent.KindLong
			length = o.LengthY
		} else if l, ok := lnLengths[noteKey{o.ChannelID, o.Offset}]; ok {
			kind = chartevent.KindLong
			lCopy := l
			length = &lCopy
		}
		cp := continuePlayFor(o.WavID, o.Continue, activation)
		emit(y, chartevent.Note{Side: side, Key: key, Kind: kind, WavID: o.WavID, Length: length, ContinuePlay: cp})
	}

	for _, t := range c.SortedGraphicsTimes() {
		emitGraphics(emit, toY(t), c.GraphicsTrack[t])
	}
	for _, t := range c.SortedOtherTimes() {
		emitOthers(emit, toY(t), c.Others[t])
	}

	sort.SliceStable(idx.AllEvents, func(i, j int) bool { return idx.AllEvents[i].Position.LessThan(idx.AllEvents[j].Position) })
	sort.SliceStable(idx.FlowEvents, func(i, j int) bool { return idx.FlowEvents[i].Position.LessThan(idx.FlowEvents[j].Position) })

	return idx, diags
}

// noteKey identifies a placed note by its channel and chart position, the
// granularity #LNOBJ pairing needs and which
// SortedByOffset's WavObj values carry directly (no arena index required).
type noteKey struct {
	channel string
	at      bmstime.ObjTime
}

// lnobjLengths resolves BMS's #LNOBJ long-note convention: on each note
// channel, an object whose wav id matches Header.LnObj closes the long note
// that started at the nearest earlier live object on the same channel.
// Returns the opening note's computed length, keyed by (channel, offset),
// and the set of closing-marker keys to drop from emission entirely (they
// carry no sound of their own, only the end position).
func lnobjLengths(c *chart.Chart, toY func(bmstime.ObjTime) bmstime.Y) (map[noteKey]bmstime.Decimal, map[noteKey]bool) {
	if !c.Header.HasLnObj {
		return nil, nil
	}
	byChannel := map[string][]notes.WavObj{}
	for _, o := range c.Notes.SortedByOffset() {
		if o.ChannelID == "01" || o.ChannelID == "BGM" {
			continue
		}
		if _, ok := bmsonLane(o.ChannelID); ok {
			continue // BMSON long notes already carry LengthY directly
		}
		byChannel[o.ChannelID] = append(byChannel[o.ChannelID], o)
	}

	lengths := map[noteKey]bmstime.Decimal{}
	skip := map[noteKey]bool{}
	for _, objs := range byChannel {
		var open *notes.WavObj
		for i := range objs {
			o := objs[i]
			if o.WavID == c.Header.LnObj {
				if open != nil {
					startY, endY := toY(open.Offset), toY(o.Offset)
					lengths[noteKey{o.ChannelID, open.Offset}] = endY.Sub(startY)
					skip[noteKey{o.ChannelID, o.Offset}] = true
					open = nil
				}
				continue
			}
			o2 := o
			open = &o2
		}
	}
	return lengths, skip
}

// bmsonLane recognizes the synthetic "X<lane>" channel id the BMSON
// ingester assigns to playable notes, distinct from any
// two-character BMS channel code.
func bmsonLane(channelID string) (int, bool) {
	if len(channelID) < 2 || channelID[0] != 'X' {
		return 0, false
	}
	n := 0
	for _, r := range channelID[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func sectionLength(c *chart.Chart, tr bmstime.Track) bmstime.Decimal {
	if v, ok := c.SectionLengths[tr]; ok {
		return v
	}
	return bmstime.One
}

// buildSegments turns the sorted arranger BPM changes into a piecewise
// time/Y mapping, accounting for stop durations folding into elapsed time
// at their Y without advancing Y itself.
func buildSegments(arrangers []arrangerAt, initialBPM bmstime.Decimal) []segment {
	segs := []segment{{startY: bmstime.Zero, startTime: 0, bpm: initialBPM}}
	cur := segs[0]
	for _, a := range arrangers {
		if a.ev.Stop != nil {
			beats := a.ev.Stop.Div(bmstime.NewFromInt(48))
			timeAtStop := cur.startTime.Add(bmstime.SpanFromSeconds(bmstime.AsFloat64(elapsedTime(cur, a.y))))
			// 60 = 240 seconds-per-measure-at-unit-bpm ÷ 4 beats per
			// measure: converts a beat count to seconds at the segment's
			// BPM the same way elapsedTime converts a Y (measure) delta.
			stopSeconds := bmstime.SpanFromSeconds(bmstime.AsFloat64(beats.Mul(bmstime.NewFromInt(60)).Div(cur.bpm)))
			cur = segment{startY: a.y, startTime: timeAtStop.Add(stopSeconds), bpm: cur.bpm}
			segs = append(segs, cur)
		}
		if a.ev.BPM != nil && !a.ev.BPM.Equal(cur.bpm) {
			t := timeAt(segs, a.y)
			cur = segment{startY: a.y, startTime: t, bpm: *a.ev.BPM}
			segs = append(segs, cur)
		}
	}
	return segs
}

func elapsedTime(seg segment, y bmstime.Y) bmstime.Decimal {
	dy := y.Sub(seg.startY)
	return dy.Mul(bmstime.NewFromInt(240)).Div(seg.bpm)
}

func timeAt(segs []segment, y bmstime.Y) bmstime.TimeSpan {
	seg := segs[len(segs)-1]
	for i := len(segs) - 1; i >= 0; i-- {
		if !segs[i].startY.GreaterThan(y) {
			seg = segs[i]
			break
		}
	}
	elapsed := elapsedTime(seg, y)
	return seg.startTime.Add(bmstime.SpanFromSeconds(bmstime.AsFloat64(elapsed)))
}

func activateTime(segs []segment, y bmstime.Y) bmstime.TimeSpan {
	return timeAt(segs, y)
}

func emitGraphics(emit func(bmstime.Y, chartevent.ChartEvent), y bmstime.Y, g *chart.GraphicsEvent) {
	if g.BGABase != nil {
		emit(y, chartevent.BgaChange{Layer: chartevent.BgaLayerBase, BmpID: *g.BGABase})
	}
	if g.BGAOverlay != nil {
		emit(y, chartevent.BgaChange{Layer: chartevent.BgaLayerOverlay, BmpID: *g.BGAOverlay})
	}
	if g.BGAOverlay2 != nil {
		emit(y, chartevent.BgaChange{Layer: chartevent.BgaLayerOverlay2, BmpID: *g.BGAOverlay2})
	}
	if g.BGAPoor != nil {
		emit(y, chartevent.BgaChange{Layer: chartevent.BgaLayerPoor, BmpID: *g.BGAPoor})
	}
	if g.OpacityBase != nil {
		emit(y, chartevent.BgaOpacityChange{Layer: chartevent.BgaLayerBase, Opacity: *g.OpacityBase})
	}
	if g.OpacityOverlay != nil {
		emit(y, chartevent.BgaOpacityChange{Layer: chartevent.BgaLayerOverlay, Opacity: *g.OpacityOverlay})
	}
	if g.OpacityOverlay2 != nil {
		emit(y, chartevent.BgaOpacityChange{Layer: chartevent.BgaLayerOverlay2, Opacity: *g.OpacityOverlay2})
	}
	if g.OpacityPoor != nil {
		emit(y, chartevent.BgaOpacityChange{Layer: chartevent.BgaLayerPoor, Opacity: *g.OpacityPoor})
	}
	if g.ArgbBase != nil {
		emit(y, chartevent.BgaArgbChange{Layer: chartevent.BgaLayerBase, ID: *g.ArgbBase})
	}
	if g.ArgbOverlay != nil {
		emit(y, chartevent.BgaArgbChange{Layer: chartevent.BgaLayerOverlay, ID: *g.ArgbOverlay})
	}
	if g.ArgbOverlay2 != nil {
		emit(y, chartevent.BgaArgbChange{Layer: chartevent.BgaLayerOverlay2, ID: *g.ArgbOverlay2})
	}
	if g.ArgbPoor != nil {
		emit(y, chartevent.BgaArgbChange{Layer: chartevent.BgaLayerPoor, ID: *g.ArgbPoor})
	}
	if g.Keybound != nil {
		emit(y, chartevent.BgaKeybound{ID: *g.Keybound})
	}
	if g.VideoSeek != nil {
		emit(y, chartevent.VideoSeek{Path: *g.VideoSeek})
	}
}

func emitOthers(emit func(bmstime.Y, chartevent.ChartEvent), y bmstime.Y, o *chart.OtherEvent) {
	if o.Text != nil {
		emit(y, chartevent.TextDisplay{Text: *o.Text})
	}
	if o.JudgeLevel != nil {
		emit(y, chartevent.JudgeLevelChange{Rank: *o.JudgeLevel})
	}
	if o.OptionChange != nil {
		emit(y, chartevent.OptionChange{Option: o.OptionChange.String()})
	}
	if o.BGMVolume != nil {
		emit(y, chartevent.BgmVolumeChange{Volume: *o.BGMVolume})
	}
	if o.KeyVolume != nil {
		emit(y, chartevent.KeyVolumeChange{Volume: *o.KeyVolume})
	}
}
