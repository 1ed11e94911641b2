// Package notes implements the note store's single arena: an
// insertion-ordered vector of WavObj plus reverse indices by wav id and
// channel id. There is no maintained offset index: SortedByOffset sorts the
// live objects on each call. Mutations overwrite the arena slot
// with a dangling sentinel rather than shifting the slice, so previously
// issued indices stay valid.
package notes

import (
	"sort"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/objid"
)

// WavObj is one placed sound-channel object: a wav reference at a chart
// position on a given raw channel code.
type WavObj struct {
	Offset    bmstime.ObjTime
	ChannelID string
	WavID     objid.ID
	Dangling  bool

	// LengthY and Continue are set only by the BMSON ingester (LengthY for
	// long notes, Continue from each note's continue flag); BMS long notes
	// are instead resolved later from the #LNOBJ marker by the precomputer.
	LengthY  *bmstime.Decimal
	Continue bool
}

// Arena owns the objects and keeps O(1)-amortized reverse indices that are
// rebuilt lazily: index slices are invalidated (nil'd) on mutation and
// recomputed the next time they're asked for, so a burst of mutations costs
// one rebuild rather than one per mutation.
type Arena struct {
	objs []WavObj

	byWavDirty     bool
	byChannelDirty bool
	byWav          map[objid.ID][]int
	byChannel      map[string][]int
}

func New() *Arena {
	return &Arena{byWav: map[objid.ID][]int{}, byChannel: map[string][]int{}}
}

// Push appends obj and returns its stable arena index.
func (a *Arena) Push(obj WavObj) int {
	idx := len(a.objs)
	a.objs = append(a.objs, obj)
	a.invalidate()
	return idx
}

func (a *Arena) invalidate() {
	a.byWavDirty = true
	a.byChannelDirty = true
}

// Len is the arena's slot count, including dangling slots.
func (a *Arena) Len() int { return len(a.objs) }

// At returns the object at idx (may be dangling).
func (a *Arena) At(idx int) WavObj { return a.objs[idx] }

// Pop removes the last pushed object by marking it dangling; it preserves
// the slot so earlier indices remain valid, matching the arena's tombstone
// policy for every other mutation.
func (a *Arena) Pop() (WavObj, bool) {
	if len(a.objs) == 0 {
		return WavObj{}, false
	}
	idx := len(a.objs) - 1
	obj := a.objs[idx]
	if !obj.Dangling {
		a.objs[idx].Dangling = true
		a.invalidate()
	}
	return obj, true
}

// RetainFunc marks every object failing keep(obj) as dangling.
func (a *Arena) RetainFunc(keep func(WavObj) bool) {
	changed := false
	for i := range a.objs {
		if a.objs[i].Dangling {
			continue
		}
		if !keep(a.objs[i]) {
			a.objs[i].Dangling = true
			changed = true
		}
	}
	if changed {
		a.invalidate()
	}
}

// RemoveByWavID marks every non-dangling object referencing id as dangling.
func (a *Arena) RemoveByWavID(id objid.ID) {
	a.RetainFunc(func(o WavObj) bool { return o.WavID != id })
}

func (a *Arena) rebuildByWav() {
	a.byWav = map[objid.ID][]int{}
	for i, o := range a.objs {
		if o.Dangling {
			continue
		}
		a.byWav[o.WavID] = append(a.byWav[o.WavID], i)
	}
	a.byWavDirty = false
}

func (a *Arena) rebuildByChannel() {
	a.byChannel = map[string][]int{}
	for i, o := range a.objs {
		if o.Dangling {
			continue
		}
		a.byChannel[o.ChannelID] = append(a.byChannel[o.ChannelID], i)
	}
	a.byChannelDirty = false
}

// ByWavID returns the arena indices of every live object referencing id.
func (a *Arena) ByWavID(id objid.ID) []int {
	if a.byWavDirty {
		a.rebuildByWav()
	}
	return a.byWav[id]
}

// ByChannel returns the arena indices of every live object on channel ch, in
// insertion order.
func (a *Arena) ByChannel(ch string) []int {
	if a.byChannelDirty {
		a.rebuildByChannel()
	}
	return a.byChannel[ch]
}

// InsertionOrder returns every live object in insertion order (for
// deterministic re-serialization).
func (a *Arena) InsertionOrder() []WavObj {
	out := make([]WavObj, 0, len(a.objs))
	for _, o := range a.objs {
		if !o.Dangling {
			out = append(out, o)
		}
	}
	return out
}

// SortedByOffset returns every live object ordered by (offset, wav_id), the
// order playback consumers need.
func (a *Arena) SortedByOffset() []WavObj {
	out := a.InsertionOrder()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offset.Equal(out[j].Offset) {
			return out[i].WavID < out[j].WavID
		}
		return out[i].Offset.Less(out[j].Offset)
	})
	return out
}
