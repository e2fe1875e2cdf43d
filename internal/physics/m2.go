package physics

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rcliao/physics-dump/internal/namedb"
	"github.com/rcliao/physics-dump/internal/wad"
)

// Chunk tags of the newer (archive-dialect) generation.
var (
	M2MonsterTag    = wad.TagOf("MNpx")
	M2EffectTag     = wad.TagOf("FXpx")
	M2ProjectileTag = wad.TagOf("PRpx")
	M2PhysicsTag    = wad.TagOf("PXpx")
	M2WeaponTag     = wad.TagOf("WPpx")
)

// Record sizes of the newer generation.
const (
	m2MonsterSize    = 156
	m2EffectSize     = 14
	m2ProjectileSize = 48
	m2WeaponSize     = 134
)

// M2Monster is a newer-generation monster definition. Relative to the
// older layout it adds a sound pitch, several named sounds, a contrail
// effect and two teleport sequences.
type M2Monster struct {
	Name                    namedb.Label   `json:"name"`
	Collection              *namedb.Label  `json:"collection"`
	Clut                    *uint16        `json:"clut"`
	Vitality                *uint16        `json:"vitality"`
	Immunities              []namedb.Label `json:"immunities"`
	Weaknesses              []namedb.Label `json:"weaknesses"`
	Flags                   MonsterFlags   `json:"flags"`
	Class                   *namedb.Label  `json:"class"`
	Friends                 []namedb.Label `json:"friends"`
	Enemies                 []namedb.Label `json:"enemies"`
	SoundPitch              float32        `json:"sound_pitch"`
	ActivationSound         *namedb.Label  `json:"activation_sound"`
	FriendlyActivationSound *namedb.Label  `json:"friendly_activation_sound"`
	ClearSound              *namedb.Label  `json:"clear_sound"`
	KillSound               *namedb.Label  `json:"kill_sound"`
	ApologySound            *namedb.Label  `json:"apology_sound"`
	FriendlyFireSound       *namedb.Label  `json:"friendly_fire_sound"`
	FlamingSound            *namedb.Label  `json:"flaming_sound"`
	RandomSound             *namedb.Label  `json:"random_sound"`
	RandomSoundMask         *uint16        `json:"random_sound_mask"`
	CarryingItemType        *namedb.Label  `json:"carrying_item_type"`
	Radius                  float32        `json:"radius"`
	Height                  float32        `json:"height"`
	PreferredHoverHeight    float32        `json:"preferred_hover_height"`
	MinimumLedgeDelta       float32        `json:"minimum_ledge_delta"`
	MaximumLedgeDelta       float32        `json:"maximum_ledge_delta"`
	ExternalVelocityScale   float32        `json:"external_velocity_scale"`
	ImpactEffect            *namedb.Label  `json:"impact_effect"`
	MeleeImpactEffect       *namedb.Label  `json:"melee_impact_effect"`
	ContrailEffect          *namedb.Label  `json:"contrail_effect"`
	HalfVisualArc           float32        `json:"half_visual_arc"`
	HalfVerticalVisualArc   float32        `json:"half_vertical_visual_arc"`
	VisualRange             float32        `json:"visual_range"`
	DarkVisualRange         float32        `json:"dark_visual_range"`
	Intelligence            *uint16        `json:"intelligence"`
	Speed                   float32        `json:"speed"`
	Gravity                 float32        `json:"gravity"`
	TerminalVelocity        float32        `json:"terminal_velocity"`
	DoorRetryMask           *uint16        `json:"door_retry_mask"`
	ShrapnelRadius          *float32       `json:"shrapnel_radius"`
	ShrapnelDamage          Damage         `json:"shrapnel_damage"`
	HitSequence             *uint16        `json:"hit_sequence"`
	HardDyingSequence       *uint16        `json:"hard_dying_sequence"`
	SoftDyingSequence       *uint16        `json:"soft_dying_sequence"`
	HardDeadSequence        *uint16        `json:"hard_dead_sequence"`
	SoftDeadSequence        *uint16        `json:"soft_dead_sequence"`
	StationarySequence      *uint16        `json:"stationary_sequence"`
	MovingSequence          *uint16        `json:"moving_sequence"`
	TeleportInSequence      *uint16        `json:"teleport_in_sequence"`
	TeleportOutSequence     *uint16        `json:"teleport_out_sequence"`
	AttackFrequency         *uint16        `json:"attack_frequency"`
	MeleeAttack             *Attack        `json:"melee_attack"`
	RangedAttack            *Attack        `json:"ranged_attack"`
}

func readM2Monster(r io.Reader, names *namedb.Set, index int) (M2Monster, error) {
	d := &reader{r: r, names: names}
	m := M2Monster{Name: names.Identify(namedb.CategoryMonster, uint32(index))}
	m.Collection, m.Clut = d.collection()
	m.Vitality = d.optU16()
	m.Immunities = d.bitset(namedb.CategoryDamageType)
	m.Weaknesses = d.bitset(namedb.CategoryDamageType)
	m.Flags = d.monsterFlags()
	m.Class = d.label32(namedb.CategoryMonsterClass)
	m.Friends = d.bitset(namedb.CategoryMonsterClass)
	m.Enemies = d.bitset(namedb.CategoryMonsterClass)
	m.SoundPitch = d.fixed()
	m.ActivationSound = d.label16(namedb.CategorySound)
	m.FriendlyActivationSound = d.label16(namedb.CategorySound)
	m.ClearSound = d.label16(namedb.CategorySound)
	m.KillSound = d.label16(namedb.CategorySound)
	m.ApologySound = d.label16(namedb.CategorySound)
	m.FriendlyFireSound = d.label16(namedb.CategorySound)
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
	m.ContrailEffect = d.label16(namedb.CategoryEffect)
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
	m.TeleportInSequence = d.optU16()
	m.TeleportOutSequence = d.optU16()
	m.AttackFrequency = d.optU16()
	m.MeleeAttack = d.attack()
	m.RangedAttack = d.attack()
	return m, d.err
}

// M2EffectFlags is the newer generation's effect flag word.
type M2EffectFlags struct {
	EndWhenAnimationLoops         bool `json:"end_when_animation_loops"`
	EndWhenTransferAnimationLoops bool `json:"end_when_transfer_animation_loops"`
	SoundOnly                     bool `json:"sound_only"`
	MakeTwinVisible               bool `json:"make_twin_visible"`
	MediaEffect                   bool `json:"media_effect"`
}

// M2Effect is a newer-generation effect definition, adding a sound
// pitch, a delay tick count and a delay sound over the older layout.
type M2Effect struct {
	Name       namedb.Label  `json:"name"`
	Collection *namedb.Label `json:"collection"`
	Clut       *uint16       `json:"clut"`
	Sequence   *uint16       `json:"sequence"`
	SoundPitch float32       `json:"sound_pitch"`
	Flags      M2EffectFlags `json:"flags"`
	Delay      *uint16       `json:"delay"`
	DelaySound *namedb.Label `json:"delay_sound"`
}

func readM2Effect(r io.Reader, names *namedb.Set, index int) (M2Effect, error) {
	d := &reader{r: r, names: names}
	e := M2Effect{Name: names.Identify(namedb.CategoryEffect, uint32(index))}
	e.Collection, e.Clut = d.collection()
	e.Sequence = d.optU16()
	e.SoundPitch = d.fixed()
	d.flags16(
		&e.Flags.EndWhenAnimationLoops,
		&e.Flags.EndWhenTransferAnimationLoops,
		&e.Flags.SoundOnly,
		&e.Flags.MakeTwinVisible,
		&e.Flags.MediaEffect,
	)
	e.Delay = d.optU16()
	e.DelaySound = d.label16(namedb.CategorySound)
	return e, d.err
}

// M2ProjectileFlags is the newer generation's 32-bit projectile flag
// word, extending the older 16-bit set by nine flags.
type M2ProjectileFlags struct {
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
	ReboundsFromFloor            bool `json:"rebounds_from_floor"`
	PenetratesMedia              bool `json:"penetrates_media"`
	BecomesItemOnDetonation      bool `json:"becomes_item_on_detonation"`
	BleedingProjectile           bool `json:"bleeding_projectile"`
	HorizontalWander             bool `json:"horizontal_wander"`
	VerticalWander               bool `json:"vertical_wander"`
	AffectedByHalfGravity        bool `json:"affected_by_half_gravity"`
	PenetratesMediaBoundary      bool `json:"penetrates_media_boundary"`
	PassesThroughObjects         bool `json:"passes_through_objects"`
}

// M2Projectile is a newer-generation projectile definition.
type M2Projectile struct {
	Name                     namedb.Label      `json:"name"`
	Collection               *namedb.Label     `json:"collection"`
	Clut                     *uint16           `json:"clut"`
	Sequence                 *uint16           `json:"sequence"`
	DetonationEffect         *namedb.Label     `json:"detonation_effect"`
	MediaDetonationEffect    *namedb.Label     `json:"media_detonation_effect"`
	ContrailEffect           *namedb.Label     `json:"contrail_effect"`
	TicksBetweenContrails    *namedb.Label     `json:"ticks_between_contrails"`
	MaximumContrails         *namedb.Label     `json:"maximum_contrails"`
	MediaProjectilePromotion *namedb.Label     `json:"media_projectile_promotion"`
	Radius                   float32           `json:"radius"`
	AreaOfEffect             float32           `json:"area_of_effect"`
	Damage                   Damage            `json:"damage"`
	Flags                    M2ProjectileFlags `json:"flags"`
	Speed                    float32           `json:"speed"`
	MaximumRange             float32           `json:"maximum_range"`
	SoundPitch               float32           `json:"sound_pitch"`
	FlybySound               *namedb.Label     `json:"flyby_sound"`
	ReboundSound             *namedb.Label     `json:"rebound_sound"`
}

func readM2Projectile(r io.Reader, names *namedb.Set, index int) (M2Projectile, error) {
	d := &reader{r: r, names: names}
	p := M2Projectile{Name: names.Identify(namedb.CategoryProjectile, uint32(index))}
	p.Collection, p.Clut = d.collection()
	p.Sequence = d.optU16()
	p.DetonationEffect = d.label16(namedb.CategoryEffect)
	p.MediaDetonationEffect = d.label16(namedb.CategoryEffect)
	p.ContrailEffect = d.label16(namedb.CategoryEffect)
	// Same effect-table resolution of the contrail counters as the older
	// generation.
	p.TicksBetweenContrails = d.label16(namedb.CategoryEffect)
	p.MaximumContrails = d.label16(namedb.CategoryEffect)
	p.MediaProjectilePromotion = d.label16(namedb.CategoryProjectile)
	p.Radius = d.world()
	p.AreaOfEffect = d.world()
	p.Damage = d.damage()
	d.flags32(
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
		&p.Flags.ReboundsFromFloor,
		&p.Flags.PenetratesMedia,
		&p.Flags.BecomesItemOnDetonation,
		&p.Flags.BleedingProjectile,
		&p.Flags.HorizontalWander,
		&p.Flags.VerticalWander,
		&p.Flags.AffectedByHalfGravity,
		&p.Flags.PenetratesMediaBoundary,
		&p.Flags.PassesThroughObjects,
	)
	p.Speed = d.world()
	p.MaximumRange = d.world()
	p.SoundPitch = d.fixed()
	p.FlybySound = d.label16(namedb.CategorySound)
	p.ReboundSound = d.label16(namedb.CategorySound)
	return p, d.err
}

// M2WeaponFlags is the newer generation's weapon flag word, a different
// set from the older generation's.
type M2WeaponFlags struct {
	IsAutomatic                  bool `json:"is_automatic"`
	DisappearsAfterUse           bool `json:"disappears_after_use"`
	PlaysInstantShellCasingSound bool `json:"plays_instant_shell_casing_sound"`
	Overloads                    bool `json:"overloads"`
	HasRandomAmmoOnPickup        bool `json:"has_random_ammo_on_pickup"`
	PowerupIsTemporary           bool `json:"powerup_is_temporary"`
	ReloadsInOneHand             bool `json:"reloads_in_one_hand"`
	FiresOutOfPhase              bool `json:"fires_out_of_phase"`
	FiresUnderMedia              bool `json:"fires_under_media"`
	TriggersShareAmmo            bool `json:"triggers_share_ammo"`
	SecondaryHasAngularFlipping  bool `json:"secondary_has_angular_flipping"`
}

// M2Trigger is one of a weapon's two trigger definitions, laid out as a
// self-contained block in the newer generation.
type M2Trigger struct {
	RoundsPerMagazine *uint16       `json:"rounds_per_magazine"`
	AmmunitionType    *namedb.Label `json:"ammunition_type"`
	TicksPerRound     *uint16       `json:"ticks_per_round"`
	RecoveryTicks     *uint16       `json:"recovery_ticks"`
	ChargingTicks     *uint16       `json:"charging_ticks"`
	RecoilMagnitude   float32       `json:"recoil_magnitude"`
	FiringSound       *namedb.Label `json:"firing_sound"`
	ClickSound        *namedb.Label `json:"click_sound"`
	ChargingSound     *namedb.Label `json:"charging_sound"`
	ShellCasingSound  *namedb.Label `json:"shell_casing_sound"`
	ReloadingSound    *namedb.Label `json:"reloading_sound"`
	ChargedSound      *namedb.Label `json:"charged_sound"`
	ProjectileType    *namedb.Label `json:"projectile_type"`
	ThetaError        float32       `json:"theta_error"`
	Dx                float32       `json:"dx"`
	Dz                float32       `json:"dz"`
	ShellCasingType   *uint16       `json:"shell_casing_type"`
	BurstCount        *uint16       `json:"burst_count"`
}

func (d *reader) m2Trigger() M2Trigger {
	var t M2Trigger
	t.RoundsPerMagazine = d.optU16()
	t.AmmunitionType = d.label16(namedb.CategoryItem)
	t.TicksPerRound = d.optU16()
	t.RecoveryTicks = d.optU16()
	t.ChargingTicks = d.optU16()
	t.RecoilMagnitude = d.world()
	t.FiringSound = d.label16(namedb.CategorySound)
	t.ClickSound = d.label16(namedb.CategorySound)
	t.ChargingSound = d.label16(namedb.CategorySound)
	t.ShellCasingSound = d.label16(namedb.CategorySound)
	t.ReloadingSound = d.label16(namedb.CategorySound)
	t.ChargedSound = d.label16(namedb.CategorySound)
	t.ProjectileType = d.label16(namedb.CategoryProjectile)
	t.ThetaError = d.angle()
	t.Dx = d.world()
	t.Dz = d.world()
	t.ShellCasingType = d.optU16()
	t.BurstCount = d.optU16()
	return t
}

// M2Weapon is a newer-generation weapon definition.
type M2Weapon struct {
	Name                      namedb.Label  `json:"name"`
	ItemType                  *namedb.Label `json:"item_type"`
	PowerupType               *namedb.Label `json:"powerup_type"`
	WeaponClass               *namedb.Label `json:"weapon_class"`
	Flags                     M2WeaponFlags `json:"flags"`
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
	LoadingTicks              *uint16       `json:"loading_ticks"`
	FinishLoadingTicks        *uint16       `json:"finish_loading_ticks"`
	PowerupTicks              *uint16       `json:"powerup_ticks"`
	Triggers                  [2]M2Trigger  `json:"triggers"`
}

func readM2Weapon(r io.Reader, names *namedb.Set, index int) (M2Weapon, error) {
	d := &reader{r: r, names: names}
	w := M2Weapon{Name: names.Identify(namedb.CategoryWeapon, uint32(index))}
	w.ItemType = d.label16(namedb.CategoryItem)
	w.PowerupType = d.label16(namedb.CategoryItem)
	w.WeaponClass = d.label16(namedb.CategoryWeaponClass)
	d.flags16(
		&w.Flags.IsAutomatic,
		&w.Flags.DisappearsAfterUse,
		&w.Flags.PlaysInstantShellCasingSound,
		&w.Flags.Overloads,
		&w.Flags.HasRandomAmmoOnPickup,
		&w.Flags.PowerupIsTemporary,
		&w.Flags.ReloadsInOneHand,
		&w.Flags.FiresOutOfPhase,
		&w.Flags.FiresUnderMedia,
		&w.Flags.TriggersShareAmmo,
		&w.Flags.SecondaryHasAngularFlipping,
	)
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
	w.ReadyTicks = d.optU16()
	w.AwaitReloadTicks = d.optU16()
	w.LoadingTicks = d.optU16()
	w.FinishLoadingTicks = d.optU16()
	w.PowerupTicks = d.optU16()
	w.Triggers = [2]M2Trigger{d.m2Trigger(), d.m2Trigger()}
	return w, d.err
}

// M2MovementProfile is one block of player movement constants, adding a
// splash height over the older layout.
type M2MovementProfile struct {
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
	SplashHeight                 float32 `json:"splash_height"`
	HalfCameraSeparation         float32 `json:"half_camera_separation"`
}

func readM2MovementProfile(d *reader) M2MovementProfile {
	return M2MovementProfile{
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
		SplashHeight:                 d.fixed(),
		HalfCameraSeparation:         d.fixed(),
	}
}

// M2Movement pairs the walking and running movement profiles.
type M2Movement struct {
	Walking M2MovementProfile `json:"walking"`
	Running M2MovementProfile `json:"running"`
}

func readM2Movement(r io.Reader) (M2Movement, error) {
	d := &reader{r: r}
	m := M2Movement{
		Walking: readM2MovementProfile(d),
		Running: readM2MovementProfile(d),
	}
	return m, d.err
}

// M2Physics is the aggregate newer-generation model.
type M2Physics struct {
	MonsterDefinitions    []M2Monster    `json:"monster_definitions"`
	EffectDefinitions     []M2Effect     `json:"effect_definitions"`
	ProjectileDefinitions []M2Projectile `json:"projectile_definitions"`
	WeaponDefinitions     []M2Weapon     `json:"weapon_definitions"`
	Physics               M2Movement     `json:"physics"`
}

// ReadM2 decodes a newer-generation physics file: an archive whose first
// subfile holds the five required chunks. Any missing chunk or malformed
// record aborts the whole decode.
func ReadM2(r io.ReadSeeker, names *namedb.Set) (*M2Physics, error) {
	w, err := OpenArchive(r)
	if err != nil {
		return nil, err
	}
	if len(w.Files) == 0 {
		return nil, fmt.Errorf("archive contains no subfiles")
	}
	return DecodeM2Chunks(w.Files[0], names)
}

// DecodeM2Chunks assembles the newer-generation model from one subfile's
// chunk list.
func DecodeM2Chunks(chunks []wad.Chunk, names *namedb.Set) (*M2Physics, error) {
	p := &M2Physics{}
	payload, err := wad.Find(chunks, M2MonsterTag)
	if err != nil {
		return nil, err
	}
	p.MonsterDefinitions, err = decodeRecords(payload, m2MonsterSize, "monster", func(r io.Reader, i int) (M2Monster, error) {
		return readM2Monster(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M2EffectTag); err != nil {
		return nil, err
	}
	p.EffectDefinitions, err = decodeRecords(payload, m2EffectSize, "effect", func(r io.Reader, i int) (M2Effect, error) {
		return readM2Effect(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M2ProjectileTag); err != nil {
		return nil, err
	}
	p.ProjectileDefinitions, err = decodeRecords(payload, m2ProjectileSize, "projectile", func(r io.Reader, i int) (M2Projectile, error) {
		return readM2Projectile(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M2WeaponTag); err != nil {
		return nil, err
	}
	p.WeaponDefinitions, err = decodeRecords(payload, m2WeaponSize, "weapon", func(r io.Reader, i int) (M2Weapon, error) {
		return readM2Weapon(r, names, i)
	})
	if err != nil {
		return nil, err
	}
	if payload, err = wad.Find(chunks, M2PhysicsTag); err != nil {
		return nil, err
	}
	if p.Physics, err = readM2Movement(bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("decode movement profiles: %w", err)
	}
	return p, nil
}
