// Package player implements the controls/physics-lite tick: translating a
// keyboard mask into world-space movement, clamping it against chunk
// availability, and the optimistic local block edit on Hit.
package player

import (
	"math"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/coords"
)

// Keys is the 8-bit control mask.
type Keys uint8

const (
	Forward Keys = 1 << iota
	Left
	Backward
	Right
	Up
	Down
	Control
	Hit
)

// Player is the client-local copy of a player's simulated state.
type Player struct {
	Pos           coords.WorldPos
	Yaw, Pitch    float32
	Keys          Keys
	RenderDistance uint32
	Active        bool
}

// Config holds the tunables a player tick needs from cfg/cfg.toml.
type Config struct {
	Speed       float64 // blocks/second baseline
	CtrlSpeedup float64 // multiplier when Control is held
}

// mvDirection returns the unit world-space direction for a control
// pressed at the given angle (degrees) offset from yaw: Forward=0,
// Left=90, Backward=180, Right=270. Pitch never affects horizontal
// movement.
func mvDirection(yawDeg float32, angleDeg float64) (dx, dz float64) {
	rad := float64(yawDeg)*math.Pi/180 + angleDeg*math.Pi/180
	return -math.Sin(rad), -math.Cos(rad)
}

// destinationOK reports whether reg has a record for the chunk at pos, and
// it is at least Unmeshed (not still Incomplete, which original_source
// called "Generating"). Absent chunks and Incomplete chunks both deny
// movement into them -- a soft wall at the edge of the loaded world.
func destinationOK(reg *chunk.Registry, pos coords.WorldPos) bool {
	d, ok := reg.Get(pos.Chunk())
	if !ok {
		return false
	}
	return d.State != chunk.StateIncomplete
}

// Tick advances the player by one camera tick of duration dt (seconds),
// given the fixed registry used for the soft-wall check. If Hit is held,
// Tick returns the block at the player's post-movement position with
// pending set true; it does not edit the registry itself; the caller
// applies the optimistic edit (ApplyOptimisticEdit) and sends the
// corresponding BlockChange.
func (p *Player) Tick(dt float64, cfg Config, reg *chunk.Registry) (blockChangedAt coords.BlockPos, pending bool) {
	oldPos := p.Pos

	speed := cfg.Speed
	if p.Keys&Control != 0 {
		speed *= cfg.CtrlSpeedup
	}
	step := speed * dt

	// Each held direction contributes its own unit vector at full step
	// length -- holding two at once (e.g. Forward+Left) moves at
	// sqrt(2)*speed, matching original_source's mv_direction/tick, which
	// adds each pressed direction's displacement independently rather
	// than summing then renormalizing.
	if p.Keys&Forward != 0 {
		dx, dz := mvDirection(p.Yaw, 0)
		p.Pos.X += dx * step
		p.Pos.Z += dz * step
	}
	if p.Keys&Left != 0 {
		dx, dz := mvDirection(p.Yaw, 90)
		p.Pos.X += dx * step
		p.Pos.Z += dz * step
	}
	if p.Keys&Backward != 0 {
		dx, dz := mvDirection(p.Yaw, 180)
		p.Pos.X += dx * step
		p.Pos.Z += dz * step
	}
	if p.Keys&Right != 0 {
		dx, dz := mvDirection(p.Yaw, 270)
		p.Pos.X += dx * step
		p.Pos.Z += dz * step
	}
	if p.Keys&Up != 0 {
		p.Pos.Y += step
	}
	if p.Keys&Down != 0 {
		p.Pos.Y -= step
	}

	// Hit is resolved against the post-movement, pre-revert position,
	// matching original_source's handle_hit/tick ordering: the block
	// cleared is the one under where the player's move took them this
	// tick, even if that position then gets reverted by the soft wall
	// below.
	var bp coords.BlockPos
	var hit bool
	if p.Keys&Hit != 0 {
		bp = p.Pos.Block()
		hit = true
	}

	if !destinationOK(reg, p.Pos) {
		p.Pos = oldPos
	}

	return bp, hit
}

// ApplyOptimisticEdit clears the block at bp in the registry entry that
// owns it, if that chunk is loaded. A later server BlockUpdate overwrites
// unconditionally regardless of what this wrote.
func ApplyOptimisticEdit(reg *chunk.Registry, bp coords.BlockPos) {
	d, ok := reg.Get(bp.Chunk())
	if !ok {
		return
	}
	d.SetBlockAt(bp.Inner(), block.Air)
}
