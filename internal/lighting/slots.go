package lighting

import (
	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
)

// LightSlot is one reserved lighting computation bound to a light type.
// Only the handles used by Type are populated after resolution.
type LightSlot struct {
	Type light.Type

	Position    *program.Parameter
	Direction   *program.Parameter
	Attenuation *program.Parameter
	SpotParams  *program.Parameter
	Diffuse     *program.Parameter
	Specular    *program.Parameter
}

// SlotList is an ordered list of slots, grouped by type in light.Types order.
type SlotList []LightSlot

// BuildSlots returns a slot list with counts[t] slots of each type t.
// Negative counts are treated as zero.
func BuildSlots(counts light.Counts) SlotList {
	total := 0
	for _, n := range counts {
		if n > 0 {
			total += n
		}
	}
	slots := make(SlotList, 0, total)
	for _, t := range light.Types {
		for i := 0; i < counts[t]; i++ {
			slots = append(slots, LightSlot{Type: t})
		}
	}
	return slots
}

// LightCount recomputes the per-type counts of the list.
func (s SlotList) LightCount() light.Counts {
	var counts light.Counts
	for _, slot := range s {
		counts[slot.Type]++
	}
	return counts
}

func (s SlotList) reset() {
	for i := range s {
		s[i] = LightSlot{Type: s[i].Type}
	}
}
