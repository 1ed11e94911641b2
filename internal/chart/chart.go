// Package chart is the typed semantic model tokens are folded into: header,
// sound/graphic resources, arrangers, notes, graphics events, and
// miscellaneous "others" events.
package chart

import (
	"sort"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/notes"
	"github.com/nitro-chart/bmscore/internal/objid"
)

type ARGBColor struct{ A, R, G, B uint8 }

type SoundDef struct {
	Path      string
	Pan       *int
	Volume    *int
	Frequency *int
}

type GraphicDef struct {
	Path        string
	Transparent ARGBColor
}

// BGACropDef is an #@BGA/#BGA crop+draw definition: source bmp plus the
// source rectangle and destination offset.
type BGACropDef struct {
	SourceBMP                      objid.ID
	SrcX, SrcY, SrcW, SrcH         int
	DstX, DstY                     int
}

type SwBgaDef struct {
	FrameRate  int
	TotalTime  int
	Line       int
	LoopMode   bool
	ArgbFrames []objid.ID
	Pattern    string
}

type Header struct {
	Title, Artist, Genre string
	Subtitle, Subartist  string
	PlayerMode           int
	Difficulty           int
	JudgeRank            bmstime.Decimal
	Total                bmstime.Decimal
	Volume               int
	LnType               int
	HasLnType            bool
	LnObj                objid.ID
	HasLnObj             bool
	BPM                  bmstime.Decimal
	PlayLevel            int
	Preview              string
	Charset              string
	Rank                 int // opaque, carried through even for anomalous values
	HasRank              bool
}

// DefaultBPM is used when a chart has no #BPM header.
var DefaultBPM = bmstime.NewFromInt(120)

type ArrangerEvent struct {
	BPM          *bmstime.Decimal
	SectionLen   *bmstime.Decimal
	Stop         *bmstime.Decimal // units: 192nd notes
	ScrollFactor *bmstime.Decimal
	SpeedFactor  *bmstime.Decimal
}

type GraphicsEvent struct {
	BGABase, BGAOverlay, BGAOverlay2, BGAPoor *objid.ID
	OpacityBase, OpacityOverlay, OpacityOverlay2, OpacityPoor *uint8
	ArgbBase, ArgbOverlay, ArgbOverlay2, ArgbPoor *objid.ID
	Keybound *objid.ID
	VideoSeek *string
}

type OtherEvent struct {
	Text         *string
	JudgeLevel   *int
	OptionChange *objid.ID
	BGMVolume    *uint8
	KeyVolume    *uint8
}

// Chart is the fully-folded semantic model produced by the token-stream
// processors (or projected directly from BMSON).
type Chart struct {
	Header Header

	Sounds   map[objid.ID]SoundDef
	Graphics map[objid.ID]GraphicDef
	BGADefs  map[objid.ID]BGACropDef
	ARGBDefs map[objid.ID]ARGBColor
	SwBga    map[objid.ID]SwBgaDef

	SectionLengths map[bmstime.Track]bmstime.Decimal

	Arrangers     map[bmstime.ObjTime]*ArrangerEvent
	GraphicsTrack map[bmstime.ObjTime]*GraphicsEvent
	Others        map[bmstime.ObjTime]*OtherEvent

	Notes *notes.Arena
}

func New() *Chart {
	return &Chart{
		Header:         Header{BPM: DefaultBPM, JudgeRank: bmstime.NewFromInt(100), Total: bmstime.NewFromInt(100)},
		Sounds:         map[objid.ID]SoundDef{},
		Graphics:       map[objid.ID]GraphicDef{},
		BGADefs:        map[objid.ID]BGACropDef{},
		ARGBDefs:       map[objid.ID]ARGBColor{},
		SwBga:          map[objid.ID]SwBgaDef{},
		SectionLengths: map[bmstime.Track]bmstime.Decimal{},
		Arrangers:      map[bmstime.ObjTime]*ArrangerEvent{},
		GraphicsTrack:  map[bmstime.ObjTime]*GraphicsEvent{},
		Others:         map[bmstime.ObjTime]*OtherEvent{},
		Notes:          notes.New(),
	}
}

func sortedTimes[T any](m map[bmstime.ObjTime]T) []bmstime.ObjTime {
	out := make([]bmstime.ObjTime, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SortedArrangerTimes returns every arranger event's position in time order.
func (c *Chart) SortedArrangerTimes() []bmstime.ObjTime { return sortedTimes(c.Arrangers) }

func (c *Chart) SortedGraphicsTimes() []bmstime.ObjTime { return sortedTimes(c.GraphicsTrack) }

func (c *Chart) SortedOtherTimes() []bmstime.ObjTime { return sortedTimes(c.Others) }

// Arranger returns (creating if absent) the ArrangerEvent at t.
func (c *Chart) Arranger(t bmstime.ObjTime) *ArrangerEvent {
	if e, ok := c.Arrangers[t]; ok {
		return e
	}
	e := &ArrangerEvent{}
	c.Arrangers[t] = e
	return e
}

func (c *Chart) GraphicsAt(t bmstime.ObjTime) *GraphicsEvent {
	if e, ok := c.GraphicsTrack[t]; ok {
		return e
	}
	e := &GraphicsEvent{}
	c.GraphicsTrack[t] = e
	return e
}

func (c *Chart) OtherAt(t bmstime.ObjTime) *OtherEvent {
	if e, ok := c.Others[t]; ok {
		return e
	}
	e := &OtherEvent{}
	c.Others[t] = e
	return e
}

// MaxTrack returns the highest track index with any event on it (notes,
// arrangers, graphics, or others), used by the precomputer's barline step.
func (c *Chart) MaxTrack() bmstime.Track {
	var max bmstime.Track
	upd := func(tr bmstime.Track) {
		if tr > max {
			max = tr
		}
	}
	for _, o := range c.Notes.InsertionOrder() {
		upd(o.Offset.Track)
	}
	for t := range c.Arrangers {
		upd(t.Track)
	}
	for t := range c.GraphicsTrack {
		upd(t.Track)
	}
	for t := range c.Others {
		upd(t.Track)
	}
	for t := range c.SectionLengths {
		upd(t)
	}
	return max
}
