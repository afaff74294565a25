package engine

import (
	"fmt"
	"strings"

	"github.com/kelana/nightmarket/engine/quest"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/engine/status"
	"github.com/kelana/nightmarket/engine/suggest"
	"github.com/kelana/nightmarket/types"
)

const (
	baseWeaponDamage = 5
	koRecoverHealth  = 50
	defaultEnemyAtk  = 4
	maxCritChance    = 0.60
	daggerBleedProc  = 0.25
)

// Attack resolves one full combat round: player DOT ticks, engagement if no
// fight is active, the player swing, enemy DOT ticks, and the enemy
// counter. Either side reaching zero ends the round early.
func (e *Engine) Attack(targetHint string) types.Result {
	s := e.State
	var lines []string
	action := fmt.Sprintf("attack %s", targetHint)

	lines = append(lines, status.TickPlayer(s)...)
	if s.Player.Health <= 0 {
		lines = append(lines, "You are barely conscious; you cannot fight.")
		e.appendHistory(action, strings.Join(lines, "\n"), nil)
		e.endTurn()
		return types.Result{Output: lines}
	}

	if !state.InCombat(s) {
		tpl := state.PickEnemyAt(s, strings.ToLower(targetHint))
		if tpl == nil {
			return e.flatResult(action, "There is nothing here to fight.")
		}
		state.StartCombat(s, *tpl)
		lines = append(lines, fmt.Sprintf("A %s confronts you!", tpl.Name))
	}

	enemy := &s.Combat.Enemy
	s.Combat.Turn = "player"
	if targetHint == "" {
		action = fmt.Sprintf("attack %s", enemy.Name)
	}

	roll := e.rollD20()
	hitTarget := 10 + enemy.Dex
	if roll.Value+s.Player.Stats.Str >= hitTarget {
		dmg := e.playerDamage(enemy)
		crit := roll.Value == 20 || e.RNG.Chance(e.critChance())
		if crit {
			dmg *= 2
		}
		state.DamageEnemy(enemy, dmg)
		critTag := ""
		if crit {
			critTag = "CRIT! "
		}
		lines = append(lines, fmt.Sprintf("You hit the %s (%s%s). Damage: %d.", enemy.Name, critTag, roll.Meaning, dmg))

		if e.RNG.Chance(e.bleedChance()) {
			status.Apply(enemy.Effects, types.EffectBleed, 1, 3)
			lines = append(lines, fmt.Sprintf("Your strike leaves the %s bleeding!", enemy.Name))
		}
	} else {
		lines = append(lines, fmt.Sprintf("You miss the %s (%s).", enemy.Name, roll.Meaning))
	}

	if enemy.HP <= 0 {
		lines = append(lines, fmt.Sprintf("The %s dissolves into cool night.", enemy.Name))
		return e.finishVictory(action, enemy, lines, roll)
	}

	lines = append(lines, status.TickEnemy(enemy)...)
	if enemy.HP <= 0 {
		lines = append(lines, fmt.Sprintf("The %s succumbs to wounds.", enemy.Name))
		return e.finishVictory(action, enemy, lines, roll)
	}

	eroll := e.rollD20()
	if eroll.Value+enemy.Dex >= 10+s.Player.Stats.Dex {
		edmg := e.enemyDamage(enemy)
		state.DamagePlayer(s, edmg)
		lines = append(lines, fmt.Sprintf("%s hits you (%s) for %d damage.", enemy.Name, eroll.Meaning, edmg))

		if enemy.StatusOnHit != "" && e.RNG.Chance(enemy.StatusChance) {
			status.Apply(s.Effects, enemy.StatusOnHit, 1, 2+e.RNG.Intn(2))
			lines = append(lines, fmt.Sprintf("%s inflicts %s!", enemy.Name, strings.ToUpper(string(enemy.StatusOnHit))))
		}
	} else {
		lines = append(lines, fmt.Sprintf("%s misses (%s).", enemy.Name, eroll.Meaning))
	}

	if s.Player.Health <= 0 {
		lines = append(lines, "You collapse. Lanterns dim as traders carry you back to the Moon Gate.")
		e.knockOut()
	} else {
		s.Combat.Turn = "player"
	}

	lines = e.appendGuidance(lines)
	e.appendHistory(action, strings.Join(lines, "\n"), &roll)
	e.endTurn()
	return types.Result{Output: lines}
}

// Flee attempts to break off combat with a DEX-against-enemy-DEX check. A
// failed attempt draws a parting hit.
func (e *Engine) Flee() types.Result {
	s := e.State
	var lines []string

	lines = append(lines, status.TickPlayer(s)...)

	if !state.InCombat(s) {
		return e.flatResult("flee", "There is nothing to flee from.")
	}
	enemy := &s.Combat.Enemy

	roll := e.rollD20()
	bonus := s.Player.Stats.Dex + e.fleeBonus()
	if roll.Value+bonus >= 10+enemy.Dex {
		lines = append(lines, "You slip into the crowd. The fight ends.")
		state.EndCombat(s)
	} else {
		lines = append(lines, "You fail to escape!")
		eroll := e.rollD20()
		edmg := max(1, eroll.Value/8+1)
		state.DamagePlayer(s, edmg)
		lines = append(lines, fmt.Sprintf("%s clips you as you turn. You take %d damage.", enemy.Name, edmg))
		if s.Player.Health <= 0 {
			lines = append(lines, "You collapse. Traders carry you to the Moon Gate.")
			e.knockOut()
		}
	}

	lines = e.appendGuidance(lines)
	e.appendHistory("flee", strings.Join(lines, "\n"), &roll)
	e.endTurn()
	return types.Result{Output: lines}
}

// UseItem consumes a named inventory item. Potions, antidotes, and
// frostbombs have bespoke effects; anything else gets a generic line.
// Items are not removed on use.
func (e *Engine) UseItem(item string) types.Result {
	s := e.State
	var lines []string

	if item == "" {
		return e.flatResult("use", "Use what?")
	}
	if !state.HasItem(s, item) {
		return e.flatResult("use "+item, fmt.Sprintf("You do not have %s.", item))
	}

	itemLower := strings.ToLower(item)
	switch {
	case strings.Contains(itemLower, "potion"):
		const heal = 18
		state.HealPlayer(s, heal)
		lines = append(lines, fmt.Sprintf("You drink %s. +%d HP.", item, heal))
		if e.RNG.Chance(0.25) && s.Effects[types.EffectPoison] != nil {
			delete(s.Effects, types.EffectPoison)
			lines = append(lines, "The tonic clears the poison.")
		}
	case strings.Contains(itemLower, "antidote"):
		if s.Effects[types.EffectPoison] != nil {
			delete(s.Effects, types.EffectPoison)
			lines = append(lines, "You cure the poison.")
		} else {
			lines = append(lines, "No poison to cure.")
		}
	case strings.Contains(itemLower, "frostbomb"):
		if state.InCombat(s) {
			status.Apply(s.Combat.Enemy.Effects, types.EffectFreeze, 1, 2)
			lines = append(lines, "You hurl a frostbomb — the enemy is chilled and slowed.")
		} else {
			lines = append(lines, "You throw a frostbomb into the night. It hisses out.")
		}
	default:
		lines = append(lines, fmt.Sprintf("You use %s.", item))
	}

	lines = e.appendGuidance(lines)
	e.appendHistory("use "+item, strings.Join(lines, "\n"), nil)
	e.endTurn()
	return types.Result{Output: lines}
}

// finishVictory pays the defeated enemy's reward, runs the post-combat
// quest/guidance pass, and records the round.
func (e *Engine) finishVictory(action string, enemy *types.Enemy, lines []string, roll types.Roll) types.Result {
	s := e.State
	lines = append(lines, e.rewardForEnemy(enemy.ID)...)

	suggest.Refresh(s, e.Defs)
	lines = append(lines, quest.CheckGameCompletion(s)...)
	if g := suggest.GuidanceLines(s); len(g) > 0 {
		lines = append(lines, "")
		lines = append(lines, g...)
	}

	state.EndCombat(s)
	e.appendHistory(action, strings.Join(lines, "\n"), &roll)
	suggest.Refresh(s, e.Defs)
	e.endTurn()
	return types.Result{Output: lines}
}

// rewardForEnemy applies the template reward: reputation, items, essence,
// and experience with its level-up check.
func (e *Engine) rewardForEnemy(enemyID string) []string {
	s := e.State
	tpl := state.EnemyTemplateByID(s, enemyID)
	if tpl == nil {
		return nil
	}
	var lines []string
	r := tpl.Reward

	if r.Reputation != 0 {
		s.Player.Reputation += r.Reputation
		lines = append(lines, fmt.Sprintf("Reputation +%d.", r.Reputation))
	}
	for _, item := range r.Items {
		if state.GrantItem(s, item) {
			lines = append(lines, fmt.Sprintf("You obtain: %s.", item))
		}
	}
	if r.Essence > 0 {
		s.Counters[state.CounterEssence] += r.Essence
		state.GrantItem(s, state.ItemMoonEssence)
		lines = append(lines, fmt.Sprintf("You gather %d Moon Essence.", r.Essence))
	}

	xp := r.XP
	if xp == 0 {
		xp = 5
	}
	s.XP += xp
	if s.XP >= s.Player.Level*10 {
		s.XP = 0
		s.Player.Level++
		s.SkillPoints++
		lines = append(lines, fmt.Sprintf("You reached level %d! You gained 1 skill point.", s.Player.Level))
	}
	return lines
}

// playerDamage is the player's swing against an enemy's armor and resists.
func (e *Engine) playerDamage(enemy *types.Enemy) int {
	dmg := baseWeaponDamage + e.State.Player.Stats.Str/2
	dmg -= enemy.Armor
	if dmg < 0 {
		dmg = 0
	}
	if r, ok := enemy.Resist["slash"]; ok && r > 0 {
		dmg = int(float64(dmg) * (1 - r))
	}
	return max(0, dmg)
}

// enemyDamage falls back from baseDamage to atk to a floor of 4. The player
// has no armor or resists.
func (e *Engine) enemyDamage(enemy *types.Enemy) int {
	base := enemy.BaseDamage
	if base == 0 {
		base = enemy.Atk
	}
	if base == 0 {
		base = defaultEnemyAtk
	}
	return max(0, base)
}

func (e *Engine) critChance() float64 {
	p := 0.05 + float64(e.State.Player.Stats.Dex)*0.015
	if state.HasPerk(e.State, state.PerkLunarBlade) {
		p += 0.10
	}
	return min(maxCritChance, p)
}

func (e *Engine) fleeBonus() int {
	if state.HasPerk(e.State, state.PerkShadowStep) {
		return 3
	}
	return 0
}

func (e *Engine) bleedChance() float64 {
	if state.HasItem(e.State, "Tarnished Dagger") {
		return daggerBleedProc
	}
	return 0
}

// knockOut restores half health, relocates to the Moon Gate, and ends the
// fight.
func (e *Engine) knockOut() {
	s := e.State
	s.Player.Health = koRecoverHealth
	s.Location = state.StartLocation
	state.EndCombat(s)
}

// appendGuidance runs the shared post-command suggestion and guidance pass.
func (e *Engine) appendGuidance(lines []string) []string {
	s := e.State
	suggest.Refresh(s, e.Defs)
	lines = append(lines, quest.CheckGameCompletion(s)...)
	if g := suggest.GuidanceLines(s); len(g) > 0 {
		lines = append(lines, "")
		lines = append(lines, g...)
	}
	return lines
}
