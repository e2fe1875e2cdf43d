package physics

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rcliao/physics-dump/internal/namedb"
	"github.com/rcliao/physics-dump/internal/wad"
)

// Chunk tags of the older (flat-dialect) generation. Any of these as the
// first four bytes of an input marks it as a flat physics file.
var (
	M1MonsterTag    = wad.TagOf("mons")
	M1EffectTag     = wad.TagOf("effe")
	M1ProjectileTag = wad.TagOf("proj")
	M1PhysicsTag    = wad.TagOf("phys")
	M1WeaponTag     = wad.TagOf("weap")
)

var m1Tags = []wad.Tag{
	M1MonsterTag,
	M1EffectTag,
	M1ProjectileTag,
	M1PhysicsTag,
	M1WeaponTag,
}

// Record sizes of the older generation.
const (
	m1MonsterSize    = 138
	m1EffectSize     = 6
	m1ProjectileSize = 36
	m1WeaponSize     = 120
)

// M1Monster is an older-generation monster definition.
type M1Monster struct {
	Name                  namedb.Label   `json:"name"`
	Collection            *namedb.Label  `json:"collection"`
	Clut                  *uint16        `json:"clut"`
	Vitality              *uint16        `json:"vitality"`
	Immunities            []namedb.Label `json:"immunities"`
	Weaknesses            []namedb.Label `json:"weaknesses"`
	Flags                 MonsterFlags   `json:"flags"`
	Class                 *namedb.Label  `json:"class"`
	Friends               []namedb.Label `json:"friends"`
	Enemies               []namedb.Label `json:"enemies"`
	ActivationSound       *namedb.Label  `json:"activation_sound"`
	ConversationSound     *namedb.Label  `json:"conversation_sound"`
	FlamingSound          *namedb.Label  `json:"flaming_sound"`
	RandomSound           *namedb.Label  `json:"random_sound"`
	RandomSoundMask       *uint16        `json:"random_sound_mask"`
	CarryingItemType      *namedb.Label  `json:"carrying_item_type"`
	Radius                float32        `json:"radius"`
	Height                float32        `json:"height"`
	PreferredHoverHeight  float32        `json:"preferred_hover_height"`
	MinimumLedgeDelta     float32        `json:"minimum_ledge_delta"`
	MaximumLedgeDelta     float32        `json:"maximum_ledge_delta"`
	ExternalVelocityScale float32        `json:"external_velocity_scale"`
	ImpactEffect          *namedb.Label  `json:"impact_effect"`
	MeleeImpactEffect     *namedb.Label  `json:"melee_impact_effect"`
	HalfVisualArc         float32        `json:"half_visual_arc"`
	HalfVerticalVisualArc float32        `json:"half_vertical_visual_arc"`
	VisualRange           float32        `json:"visual_range"`
	DarkVisualRange       float32        `json:"dark_visual_range"`
	Intelligence          *uint16        `json:"intelligence"`
	Speed                 float32        `json:"speed"`
	Gravity               float32        `json:"gravity"`
	TerminalVelocity      float32        `json:"terminal_velocity"`
	DoorRetryMask         *uint16        `json:"door_retry_mask"`
	ShrapnelRadius        *float32       `json:"shrapnel_radius"`
	ShrapnelDamage        Damage         `json:"shrapnel_damage"`
	HitSequence           *uint16        `json:"hit_sequence"`
	HardDyingSequence     *uint16        `json:"hard_dying_sequence"`
	SoftDyingSequence     *uint16        `json:"soft_dying_sequence"`
	HardDeadSequence      *uint16        `json:"hard_dead_sequence"`
	SoftDeadSequence      *uint16        `json:"soft_dead_sequence"`
	StationarySequence    *uint16        `json:"stationary_sequence"`
	MovingSequence        *uint16        `json:"moving_sequence"`
	AttackFrequency       *uint16        `json:"attack_frequency"`
	MeleeAttack           *Attack        `json:"melee_attack"`
	RangedAttack          *Attack        `json:"ranged_attack"`
}

func readM1Monster(r io.Reader, names *namedb.Set, index int) (M1Monster, error) {
	d := &reader{r: r, names: names}
	m := M1Monster{Name: names.Identify(namedb.CategoryMonster, uint32(index))}
	m.Collection, m.Clut = d.collection()
	m.Vitality = d.optU16()
	m.Immunities = d.bitset(namedb.CategoryDamageType)
	m.Weaknesses = d.bitset(namedb.CategoryDamageType)
	m.Flags = d.monsterFlags()
	m.Class = d.label32(namedb.CategoryMonsterClass)
	m.Friends = d.bitset(namedb.CategoryMonsterClass)
	m.Enemies = d.bitset(namedb.CategoryMonsterClass)
	m.ActivationSound = d.label16(namedb.CategorySound)
	m.ConversationSound = d.label16(namedb.CategorySound)
	m.FlamingSound = d.label16(namedb.CategorySound)
	m.RandomSound = d.label16(namedb.CategorySound)
	m.RandomSoundMask = d.optU16()
	m.CarryingItemType = d.label16(namedb.CategoryItem)
	m.Radius = d.world()
	m.Height = d.world()
	m.PreferredHoverHeight = d.world()
	m.MinimumLedgeDelta = d.world()
	m.MaximumLedgeDelta = d.world()
	m.ExternalVelocityScale = d.fixed()
	m.ImpactEffect = d.label16(namedb.CategoryEffect)
	m.MeleeImpactEffect = d.label16(namedb.CategoryEffect)
	m.HalfVisualArc = d.angle()
	m.HalfVerticalVisualArc = d.angle()
	m.VisualRange = d.world()
	m.DarkVisualRange = d.world()
	m.Intelligence = d.optU16()
	m.Speed = d.world()
	m.Gravity = d.world()
	m.TerminalVelocity = d.world()
	m.DoorRetryMask = d.optU16()
	m.ShrapnelRadius = d.optWorld()
	m.ShrapnelDamage = d.damage()
	m.HitSequence = d.optU16()
	m.HardDyingSequence = d.optU16()
	m.SoftDyingSequence = d.optU16()
	m.HardDeadSequence = d.optU16()
	m.SoftDeadSequence = d.optU16()
	m.StationarySequence = d.optU16()
	m.MovingSequence = d.optU16()
	m.AttackFrequency = d.optU16()
	m.MeleeAttack = d.attack()
	m.RangedAttack = d.attack()
	return m, d.err
}

// M1EffectFlags is the older generation's effect flag word.
type M1EffectFlags struct {
	EndWhenAnimationLoops         bool `json:"end_when_animation_loops"`
	EndWhenTransferAnimationLoops bool `json:"end_when_transfer_animation_loops"`
	SoundOnly                     bool `json:"sound_only"`
	MakeTwinVisible               bool `json:"make_twin_visible"`
}

// M1Effect is an older-generation effect definition.
type M1Effect struct {
	Name       namedb.Label  `json:"name"`
	Collection *namedb.Label `json:"collection"`
	Clut       *uint16       `json:"clut"`
	Sequence   *uint16       `json:"sequence"`
	Flags      M1EffectFlags `json:"flags"`
}

func readM1Effect(r io.Reader, names *namedb.Set, index int) (M1Effect, error) {
	d := &reader{r: r, names: names}
	e := M1Effect{Name: names.Identify(namedb.CategoryEffect, uint32(index))}
	e.Collection, e.Clut = d.collection()
	e.Sequence = d.optU16()
	d.flags16(
		&e.Flags.EndWhenAnimationLoops,
		&e.Flags.EndWhenTransferAnimationLoops,
		&e.Flags.SoundOnly,
		&e.Flags.MakeTwinVisible,
	)
	return e, d.err
}

// M1ProjectileFlags is the older generation's 16-bit projectile flag
// word.
type M1ProjectileFlags struct {
	Guided                       bool `json:"guided"`
	StopWhenAnimationLoops       bool `json:"stop_when_animation_loops"`
	Persistent                   bool `json:"persistent"`
	Alien                        bool `json:"alien"`
	AffectedByGravity            bool `json:"affected_by_gravity"`
	NoHorizontalError            bool `json:"no_horizontal_error"`
	NoVerticalError              bool `json:"no_vertical_error"`
	CanToggleControlPanels       bool `json:"can_toggle_control_panels"`
	PositiveVerticalError        bool `json:"positive_vertical_error"`
	Melee                        bool `json:"melee"`
	PersistentAndVirulent        bool `json:"persistent_and_virulent"`
	UsuallyPassTransparentSide   bool `json:"usually_pass_transparent_side"`
	SometimesPassTransparentSide bool `json:"sometimes_pass_transparent_side"`
	DoublyAffectedByGravity      bool `json:"doubly_affected_by_gravity"`
}

// M1Projectile is an older-generation projectile definition.
type M1Projectile struct {
	Name                  namedb.Label      `json:"name"`
	Collection            *namedb.Label     `json:"collection"`
	Clut                  *uint16           `json:"clut"`
	Sequence              *uint16           `json:"sequence"`
	DetonationEffect      *namedb.Label     `json:"detonation_effect"`
	ContrailEffect        *namedb.Label     `json:"contrail_effect"`
	TicksBetweenContrails *namedb.Label     `json:"ticks_between_contrails"`
	MaximumContrails      *namedb.Label     `json:"maximum_contrails"`
	Radius                float32           `json:"radius"`
	AreaOfEffect          float32           `json:"area_of_effect"`
	Damage                Damage            `json:"damage"`
	Flags                 M1ProjectileFlags `json:"flags"`
	Speed                 float32           `json:"speed"`
	MaximumRange          float32           `json:"maximum_range"`
	FlybySound            *namedb.Label     `json:"flyby_sound"`
}

func readM1Projectile(r io.Reader, names *namedb.Set, index int) (M1Projectile, error) {
	d := &reader{r: r, names: names}
	p := M1Projectile{Name: names.Identify(namedb.CategoryProjectile, uint32(index))}
	p.Collection, p.Clut = d.collection()
	p.Sequence = d.optU16()
	p.DetonationEffect = d.label16(namedb.CategoryEffect)
	p.ContrailEffect = d.label16(namedb.CategoryEffect)
	// The contrail counters resolve through the effect table; the
	// original reader did exactly this and the output is part of the
	// compatibility surface.
	p.TicksBetweenContrails = d.label16(namedb.CategoryEffect)
	p.MaximumContrails = d.label16(namedb.CategoryEffect)
	p.Radius = d.world()
	p.AreaOfEffect = d.world()
	p.Damage = d.damage()
	d.flags16(
		&p.Flags.Guided,
		&p.Flags.StopWhenAnimationLoops,
		&p.Flags.Persistent,
		&p.Flags.Alien,
		&p.Flags.AffectedByGravity,
		&p.Flags.NoHorizontalError,
		&p.Flags.NoVerticalError,
		&p.Flags.CanToggleControlPanels,
		&p.Flags.PositiveVerticalError,
		&p.Flags.Melee,
		&p.Flags.PersistentAndVirulent,
		&p.Flags.UsuallyPassTransparentSide,
		&p.Flags.SometimesPassTransparentSide,
		&p.Flags.DoublyAffectedByGravity,
	)
	p.Speed = d.world()
	p.MaximumRange = d.world()
	p.FlybySound = d.label16(namedb.CategorySound)
	return p, d.err
}

// M1WeaponFlags is the older generation's weapon flag word.
type M1WeaponFlags struct {
	IsAutomatic        bool `json:"is_automatic"`
	Unknown            bool `json:"unknown"`
	DisappearsAfterUse bool `json:"disappears_after_use"`
}

// M1Trigger is one of a weapon's two trigger definitions.
type M1Trigger struct {
	RoundsPerMagazine    *uint16       `json:"rounds_per_magazine"`
	AmmunitionType       *namedb.Label `json:"ammunition_type"`
	TicksPerRound        *uint16       `json:"ticks_per_round"`
	RecoveryTicks        *uint16       `json:"recovery_ticks"`
	ChargingTicks        *uint16       `json:"charging_ticks"`
	RecoilMagnitude      float32       `json:"recoil_magnitude"`
	FiringSound          *namedb.Label `json:"firing_sound"`
	ClickSound           *namedb.Label `json:"click_sound"`
	ChargingSound        *namedb.Label `json:"charging_sound"`
	ShellCasingSound     *namedb.Label `json:"shell_casing_sound"`
	ReloadingSound       *namedb.Label `json:"reloading_sound"`
	SoundActivationRange float32       `json:"sound_activation_range"`
	ProjectileType       *namedb.Label `json:"projectile_type"`
	ThetaError           float32       `json:"theta_error"`
	Dx                   float32       `json:"dx"`
	Dz                   float32       `json:"dz"`
	BurstCount           *uint16       `json:"burst_count"`
}

// M1Weapon is an older-generation weapon definition.
type M1Weapon struct {
	Name                      namedb.Label  `json:"name"`
	ItemType                  *namedb.Label `json:"item_type"`
	WeaponClass               *namedb.Label `json:"weapon_class"`
	Flags                     M1WeaponFlags `json:"flags"`
	FiringLightIntensity      float32       `json:"firing_light_intensity"`
	FiringIntensityDecayTicks *uint16       `json:"firing_intensity_decay_ticks"`
	IdleHeight                float32       `json:"idle_height"`
	BobAmplitude              float32       `json:"bob_amplitude"`
	KickHeight                float32       `json:"kick_height"`
	ReloadHeight              float32       `json:"reload_height"`
	IdleWidth                 float32       `json:"idle_width"`
	HorizontalAmplitude       float32       `json:"horizontal_amplitude"`
	Collection                *uint16       `json:"collection"`
	IdleSequence              *uint16       `json:"idle_sequence"`
	FiringSequence            *uint16       `json:"firing_sequence"`
	ReloadingSequence         *uint16       `json:"reloading_sequence"`
	ChargingSequence          *uint16       `json:"charging_sequence"`
	ChargedSequence           *uint16       `json:"charged_sequence"`
	ReadyTicks                *uint16       `json:"ready_ticks"`
	AwaitReloadTicks          *uint16       `json:"await_reload_ticks"`
	Triggers                  [2]M1Trigger  `json:"triggers"`
}

// readM1Weapon decodes the older weapon layout, whose two triggers'
// fields are interleaved across the byte stream. The wire order below is
// the contract; the two triggers are assembled at the end.
func readM1Weapon(r io.Reader, names *namedb.Set, index int) (M1Weapon, error) {
	d := &reader{r: r, names: names}
	var t0, t1 M1Trigger
	w := M1Weapon{Name: names.Identify(namedb.CategoryWeapon, uint32(index))}
	w.ItemType = d.label16(namedb.CategoryItem)
	w.WeaponClass = d.label16(namedb.CategoryWeaponClass)
	d.flags16(&w.Flags.IsAutomatic, &w.Flags.Unknown, &w.Flags.DisappearsAfterUse)
	t0.AmmunitionType = d.label16(namedb.CategoryItem)
	t0.RoundsPerMagazine = d.optU16()
	t1.AmmunitionType = d.label16(namedb.CategoryItem)
	t1.RoundsPerMagazine = d.optU16()
	w.FiringLightIntensity = d.fixed()
	w.FiringIntensityDecayTicks = d.optU16()
	w.IdleHeight = d.fixed()
	w.BobAmplitude = d.fixed()
	w.KickHeight = d.fixed()
	w.ReloadHeight = d.fixed()
	w.IdleWidth = d.fixed()
	w.HorizontalAmplitude = d.fixed()
	w.Collection = d.optU16()
	w.IdleSequence = d.optU16()
	w.FiringSequence = d.optU16()
	w.ReloadingSequence = d.optU16()
	d.u16() // unused
	w.ChargingSequence = d.optU16()
	w.ChargedSequence = d.optU16()
	t0.TicksPerRound = d.optU16()
	t1.TicksPerRound = d.optU16()
	w.AwaitReloadTicks = d.optU16()
	w.ReadyTicks = d.optU16()
	t0.RecoveryTicks = d.optU16()
	t1.RecoveryTicks = d.optU16()
	t0.ChargingTicks = d.optU16()
	t1.ChargingTicks = d.optU16()
	t0.RecoilMagnitude = d.world()
	t1.RecoilMagnitude = d.world()
	t0.FiringSound = d.label16(namedb.CategorySound)
	t1.FiringSound = d.label16(namedb.CategorySound)
	t0.ClickSound = d.label16(namedb.CategorySound)
	t1.ClickSound = d.label16(namedb.CategorySound)
	// The second trigger has no reloading sound of its own and shares
	// the first trigger's charging sound.
	t0.ReloadingSound = d.label16(namedb.CategorySound)
	t1.ReloadingSound = nil
	t0.ChargingSound = d.label16(namedb.CategorySound)
	if t0.ChargingSound != nil {
		shared := *t0.ChargingSound
		t1.ChargingSound = &shared
	}
	t0.ShellCasingSound = d.label16(namedb.CategorySound)
	t1.ShellCasingSound = d.label16(namedb.CategorySound)
	t0.SoundActivationRange = d.world()
	t1.SoundActivationRange = d.world()
	t0.ProjectileType = d.label16(namedb.CategoryProjectile)
	t1.ProjectileType = d.label16(namedb.CategoryProjectile)
	t0.ThetaError = d.angle()
	t1.ThetaError = d.angle()
	t0.Dx = d.world()
	t0.Dz = d.world()
	t1.Dx = d.world()
	t1.Dz = d.world()
	t0.BurstCount = d.optU16()
	t1.BurstCount = d.optU16()
	d.u16() // unused
	w.Triggers = [2]M1Trigger{t0, t1}
	return w, d.err
}

// M1MovementProfile is one block of player movement constants.
type M1MovementProfile struct {
	MaximumForwardVelocity       float32 `json:"maximum_forward_velocity"`
	MaximumBackwardVelocity      float32 `json:"maximum_backward_velocity"`
	MaximumPerpendicularVelocity float32 `json:"maximum_perpendicular_velocity"`
	Acceleration                 float32 `json:"acceleration"`
	Deceleration                 float32 `json:"deceleration"`
	AirborneDeceleration         float32 `json:"airborne_deceleration"`
	GravitationalAcceleration    float32 `json:"gravitational_acceleration"`
	ClimbingAcceleration         float32 `json:"climbing_acceleration"`
	TerminalVelocity             float32 `json:"terminal_velocity"`
	ExternalDeceleration         float32 `json:"external_deceleration"`
	AngularAcceleration          float32 `json:"angular_acceleration"`
	AngularDeceleration          float32 `json:"angular_deceleration"`
	MaximumAngularVelocity       float32 `json:"maximum_angular_velocity"`
	AngularRecenteringVelocity   float32 `json:"angular_recentering_velocity"`
	FastAngularVelocity          float32 `json:"fast_angular_velocity"`
	FastAngularMaximum           float32 `json:"fast_angular_maximum"`
	MaximumElevation             float32 `json:"maximum_elevation"`
	ExternalAngularDeceleration  float32 `json:"external_angular_deceleration"`
	StepDelta                    float32 `json:"step_delta"`
	StepAmplitude                float32 `json:"step_amplitude"`
	Radius                       float32 `json:"radius"`
	Height                       float32 `json:"height"`
	DeadHeight                   float32 `json:"dead_height"`
	CameraHeight                 float32 `json:"camera_height"`
	HalfCameraSeparation         float32 `json:"half_camera_separation"`
}

func readM1MovementProfile(d *reader) M1MovementProfile {
	return M1MovementProfile{
		MaximumForwardVelocity:       d.fixed(),
		MaximumBackwardVelocity:      d.fixed(),
		MaximumPerpendicularVelocity: d.fixed(),
		Acceleration:                 d.fixed(),
		Deceleration:                 d.fixed(),
		AirborneDeceleration:         d.fixed(),
		GravitationalAcceleration:    d.fixed(),
		ClimbingAcceleration:         d.fixed(),
		TerminalVelocity:             d.fixed(),
		ExternalDeceleration:         d.fixed(),
		AngularAcceleration:          d.fixed(),
		AngularDeceleration:          d.fixed(),
		MaximumAngularVelocity:       d.fixed(),
		AngularRecenteringVelocity:   d.fixed(),
		FastAngularVelocity:          d.fixed(),
		FastAngularMaximum:           d.fixed(),
		MaximumElevation:             d.fixed(),
		ExternalAngularDeceleration:  d.fixed(),
		StepDelta:                    d.fixed(),
		StepAmplitude:                d.fixed(),
		Radius:                       d.fixed(),
		Height:                       d.fixed(),
		DeadHeight:                   d.fixed(),
		CameraHeight:                 d.fixed(),
		HalfCameraSeparation:         d.fixed(),
	}
}

// M1Movement pairs the walking and running movement profiles.
type M1Movement struct {
	Walking M1MovementProfile `json:"walking"`
	Running M1MovementProfile `json:"running"`
}

func readM1Movement(r io.Reader) (M1Movement, error) {
	d := &reader{r: r}
	m := M1Movement{
		Walking: readM1MovementProfile(d),
		Running: readM1MovementProfile(d),
	}
	return m, d.err
}

// M1Physics is the aggregate older-generation model.
type M1Physics struct {
	MonsterDefinitions    []M1Monster    `json:"monster_definitions"`
	EffectDefinitions     []M1Effect     `json:"effect_definitions"`
	ProjectileDefinitions []M1Projectile `json:"projectile_definitions"`
	WeaponDefinitions     []M1Weapon     `json:"weapon_definitions"`
	Physics               M1Movement     `json:"physics"`
}

// ReadM1 decodes an older-generation physics file: a flat chunk stream
// holding the five required chunks. Any missing chunk or malformed
// record aborts the whole decode.
func ReadM1(r io.ReadSeeker, names *namedb.Set) (*M1Physics, error) {
	dialect, err := DetectDialect(r)
	if err != nil {
		return nil, err
	}
	if dialect != DialectFlat {
		return nil, &DialectError{Want: DialectFlat, Got: dialect}
	}
	chunks, err := wad.ReadFlatChunks(r)
	if err != nil {
		return nil, err
	}
	return DecodeM1Chunks(chunks, names)
}

// DecodeM1Chunks assembles the older-generation model from an already
// parsed chunk list.
func DecodeM1Chunks(chunks []wad.Chunk, names *namedb.Set) (*M1Physics, error) {
	p := &M1Physics{}
	payload, err := wad.Find(chunks, M1MonsterTag)
	if err != nil {
		return nil, err
	}
	p.MonsterDefinitions, err = decodeRecords(payload, m1MonsterSize, "monster", func(r io.Reader, i int) (M1Monster, error) {
		return readM1Monster(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M1EffectTag); err != nil {
		return nil, err
	}
	p.EffectDefinitions, err = decodeRecords(payload, m1EffectSize, "effect", func(r io.Reader, i int) (M1Effect, error) {
		return readM1Effect(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M1ProjectileTag); err != nil {
		return nil, err
	}
	p.ProjectileDefinitions, err = decodeRecords(payload, m1ProjectileSize, "projectile", func(r io.Reader, i int) (M1Projectile, error) {
		return readM1Projectile(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M1WeaponTag); err != nil {
		return nil, err
	}
	p.WeaponDefinitions, err = decodeRecords(payload, m1WeaponSize, "weapon", func(r io.Reader, i int) (M1Weapon, error) {
		return readM1Weapon(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M1PhysicsTag); err != nil {
		return nil, err
	}
	if p.Physics, err = readM1Movement(bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("decode movement profiles: %w", err)
	}
	return p, nil
}
