// Package status implements the damage-over-time engine: applying effect
// stacks and ticking them at turn boundaries for the player and the active
// enemy.
package status

import (
	"fmt"

	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// tickOrder fixes the iteration order so narration and tests are
// deterministic. Each effect computes independently.
var tickOrder = []types.EffectKind{
	types.EffectPoison,
	types.EffectBleed,
	types.EffectBurn,
	types.EffectFreeze,
}

// dotDamage maps each effect kind to its per-tick damage formula.
// Kinds without an entry (freeze) tick duration but deal no damage.
var dotDamage = map[types.EffectKind]func(stacks int) int{
	types.EffectPoison: func(stacks int) int { return max(1, stacks) },
	types.EffectBleed:  func(stacks int) int { return max(2, stacks*2) },
	types.EffectBurn:   func(stacks int) int { return stacks * 3 },
}

// Apply adds stacks of an effect. Duration never shrinks: the longer of the
// existing and the new duration wins.
func Apply(m types.StatusMap, kind types.EffectKind, addStacks, duration int) {
	st, ok := m[kind]
	if !ok {
		st = &types.Status{}
		m[kind] = st
	}
	st.Stacks += addStacks
	if duration > st.Duration {
		st.Duration = duration
	}
}

// TickPlayer resolves the player's damage-over-time effects at the start of
// the player's side of a turn. The iron_will perk burns duration twice as
// fast. Expired effects are deleted and narrated as fading.
func TickPlayer(s *types.State) []string {
	var lines []string
	decrement := 1
	if state.HasPerk(s, state.PerkIronWill) {
		decrement = 2
	}
	for _, kind := range tickOrder {
		st, ok := s.Effects[kind]
		if !ok || st.Duration <= 0 {
			continue
		}
		if dmg := tickDamage(kind, st.Stacks); dmg > 0 {
			state.DamagePlayer(s, dmg)
			lines = append(lines, fmt.Sprintf("You suffer %s for %d damage.", kind, dmg))
		}
		st.Duration -= decrement
		if st.Duration <= 0 {
			delete(s.Effects, kind)
			lines = append(lines, fmt.Sprintf("The %s fades.", kind))
		}
	}
	return lines
}

// TickEnemy resolves the active enemy's effects at the start of the enemy's
// side of a turn. Damage accumulates and lands once; expired effects are
// dropped without narration.
func TickEnemy(e *types.Enemy) []string {
	if e == nil {
		return nil
	}
	var lines []string
	total := 0
	for _, kind := range tickOrder {
		st, ok := e.Effects[kind]
		if !ok || st.Duration <= 0 {
			continue
		}
		if dmg := tickDamage(kind, st.Stacks); dmg > 0 {
			total += dmg
			lines = append(lines, fmt.Sprintf("The %s suffers %s for %d damage.", e.Name, kind, dmg))
		}
		st.Duration--
		if st.Duration <= 0 {
			delete(e.Effects, kind)
		}
	}
	if total > 0 {
		state.DamageEnemy(e, total)
	}
	return lines
}

func tickDamage(kind types.EffectKind, stacks int) int {
	if f, ok := dotDamage[kind]; ok {
		return f(stacks)
	}
	return 0
}
