// Package chartevent defines the payload types carried by the precomputed
// playback index: ChartEvent variants (one per payload family)
// and the narrower FlowEvent variants the integrator uses to find segment
// boundaries (tempo/speed/scroll changes only).
package chartevent

import (
	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/objid"
)

type Side int

const (
	SideNone Side = iota
	Side1P
	Side2P
)

type NoteKind int

const (
	KindVisible NoteKind = iota
	KindLong
	KindInvisible
)

// ChartEvent is a closed set of payload variants. A type switch on the
// concrete type, not a string tag, is the dispatch idiom used everywhere
// this is consumed.
type ChartEvent interface{ isChartEvent() }

type Note struct {
	Side         Side
	Key          int
	Kind         NoteKind
	WavID        objid.ID
	Length       *bmstime.Decimal // Y length, set for KindLong
	ContinuePlay *bmstime.TimeSpan
}

type Bgm struct {
	WavID        objid.ID
	ContinuePlay *bmstime.TimeSpan
}

type BarLine struct{}

type BpmChange struct{ BPM bmstime.Decimal }

type SpeedChange struct{ Factor bmstime.Decimal }

type ScrollChange struct{ Factor bmstime.Decimal }

// Stop carries the already-applied duration for renderer feedback; the
// integrator does not act on it (its effect is folded into ActivateTime at
// precompute time).
type Stop struct{ DurationInBeats bmstime.Decimal }

type BgaLayer int

const (
	BgaLayerBase BgaLayer = iota
	BgaLayerOverlay
	BgaLayerOverlay2
	BgaLayerPoor
)

type BgaChange struct {
	Layer BgaLayer
	BmpID objid.ID
}

type BgaOpacityChange struct {
	Layer   BgaLayer
	Opacity uint8
}

type BgaArgbChange struct {
	Layer BgaLayer
	ID    objid.ID
}

type BgmVolumeChange struct{ Volume uint8 }

type KeyVolumeChange struct{ Volume uint8 }

type TextDisplay struct{ Text string }

type JudgeLevelChange struct{ Rank int }

type VideoSeek struct{ Path string }

type BgaKeybound struct{ ID objid.ID }

type OptionChange struct{ Option string }

func (Note) isChartEvent()             {}
func (Bgm) isChartEvent()              {}
func (BarLine) isChartEvent()          {}
func (BpmChange) isChartEvent()        {}
func (SpeedChange) isChartEvent()      {}
func (ScrollChange) isChartEvent()     {}
func (Stop) isChartEvent()             {}
func (BgaChange) isChartEvent()        {}
func (BgaOpacityChange) isChartEvent() {}
func (BgaArgbChange) isChartEvent()    {}
func (BgmVolumeChange) isChartEvent()  {}
func (KeyVolumeChange) isChartEvent()  {}
func (TextDisplay) isChartEvent()      {}
func (JudgeLevelChange) isChartEvent() {}
func (VideoSeek) isChartEvent()        {}
func (BgaKeybound) isChartEvent()      {}
func (OptionChange) isChartEvent()     {}

// FlowEvent is the narrower set that changes integrator state: BpmFlow and
// SpeedFlow change velocity and window sizing, ScrollFlow changes only the
// display scroll factor. Stop is deliberately excluded.
type FlowEvent interface{ isFlowEvent() }

type BpmFlow struct{ BPM bmstime.Decimal }
type SpeedFlow struct{ Factor bmstime.Decimal }
type ScrollFlow struct{ Factor bmstime.Decimal }

func (BpmFlow) isFlowEvent()    {}
func (SpeedFlow) isFlowEvent()  {}
func (ScrollFlow) isFlowEvent() {}

// PlayheadEvent bundles a monotonically assigned id with its precomputed Y
// position, absolute activation time, and payload.
type PlayheadEvent struct {
	ID           uint64
	Position     bmstime.Y
	ActivateTime bmstime.TimeSpan
	Event        ChartEvent
}

// FlowEventEntry pairs a FlowEvent with the Y it takes effect at, for the
// FlowEvents index.
type FlowEventEntry struct {
	Position bmstime.Y
	Event    FlowEvent
}
