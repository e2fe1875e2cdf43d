// Package physics decodes the two generations of physics records out of
// their containers: the older generation stored as a flat chunk stream,
// the newer one inside a directory-indexed archive. Field sequences are
// the wire contract; each generation's decoder declares its fields in
// exact read order.
package physics

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rcliao/physics-dump/internal/codec"
	"github.com/rcliao/physics-dump/internal/namedb"
	"github.com/rcliao/physics-dump/internal/wad"
)

// Dialect is the container framing convention of an input, decided once
// by tag peek at the entry point and carried explicitly from there.
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectFlat
	DialectArchive
)

func (d Dialect) String() string {
	switch d {
	case DialectFlat:
		return "flat"
	case DialectArchive:
		return "archive"
	}
	return "unknown"
}

// DialectError reports input framed in the other dialect than the
// command expects.
type DialectError struct {
	Want, Got Dialect
}

func (e *DialectError) Error() string {
	if e.Want == DialectArchive && e.Got == DialectFlat {
		return "this is a flat-dialect physics file, not an archive"
	}
	return fmt.Sprintf("expected a %s-dialect physics file, got %s", e.Want, e.Got)
}

// RecordSizeError reports a chunk payload that does not divide evenly
// into fixed-size records.
type RecordSizeError struct {
	Kind       string
	PayloadLen int
	RecordSize int
}

func (e *RecordSizeError) Error() string {
	return fmt.Sprintf("non-integer number of %s definitions, or corrupted/misdetected physics file (%d bytes, %d per definition)",
		e.Kind, e.PayloadLen, e.RecordSize)
}

// DetectDialect peeks the first four bytes of the input without
// consuming them. Inputs opening with a known flat chunk tag are the
// flat dialect; everything else is treated as an archive.
func DetectDialect(r io.ReadSeeker) (Dialect, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return DialectUnknown, fmt.Errorf("peek dialect tag: %w", err)
	}
	if _, err := r.Seek(-4, io.SeekCurrent); err != nil {
		return DialectUnknown, fmt.Errorf("peek dialect tag: %w", err)
	}
	tag := wad.Tag(buf)
	for _, t := range m1Tags {
		if tag == t {
			return DialectFlat, nil
		}
	}
	return DialectArchive, nil
}

// OpenArchive parses an archive-dialect container, rejecting flat input
// up front.
func OpenArchive(r io.ReadSeeker) (*wad.Wad, error) {
	dialect, err := DetectDialect(r)
	if err != nil {
		return nil, err
	}
	if dialect != DialectArchive {
		return nil, &DialectError{Want: DialectArchive, Got: dialect}
	}
	return wad.Read(r)
}

// Decode determines the input's dialect by tag peek and decodes the
// matching generation: flat streams carry older-generation records,
// archives carry newer-generation ones. The result is either *M1Physics
// or *M2Physics.
func Decode(r io.ReadSeeker, names *namedb.Set) (any, error) {
	dialect, err := DetectDialect(r)
	if err != nil {
		return nil, err
	}
	if dialect == DialectFlat {
		return ReadM1(r, names)
	}
	return ReadM2(r, names)
}

// decodeRecords splits payload into fixed-size slices and decodes each
// independently, in order. The slice position doubles as the record's
// identity index.
func decodeRecords[T any](payload []byte, recordSize int, kind string, read func(r io.Reader, index int) (T, error)) ([]T, error) {
	if len(payload)%recordSize != 0 {
		return nil, &RecordSizeError{Kind: kind, PayloadLen: len(payload), RecordSize: recordSize}
	}
	out := make([]T, 0, len(payload)/recordSize)
	for i := 0; i*recordSize < len(payload); i++ {
		rec, err := read(bytes.NewReader(payload[i*recordSize:(i+1)*recordSize]), i)
		if err != nil {
			return nil, fmt.Errorf("decode %s definition %d: %w", kind, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// reader decodes one record's fields in wire order, latching the first
// error so the per-record decoders stay straight-line field sequences.
type reader struct {
	r     io.Reader
	names *namedb.Set
	err   error
}

func (d *reader) u16() uint16 {
	if d.err != nil {
		return 0
	}
	v, err := codec.ReadU16(d.r)
	d.err = err
	return v
}

func (d *reader) i16() int16 {
	return int16(d.u16())
}

func (d *reader) fixed() float32 {
	if d.err != nil {
		return 0
	}
	v, err := codec.ReadFixed(d.r)
	d.err = err
	return v
}

func (d *reader) world() float32 {
	if d.err != nil {
		return 0
	}
	v, err := codec.ReadWorld(d.r)
	d.err = err
	return v
}

func (d *reader) angle() float32 {
	if d.err != nil {
		return 0
	}
	v, err := codec.ReadAngle(d.r)
	d.err = err
	return v
}

func (d *reader) optU16() *uint16 {
	if d.err != nil {
		return nil
	}
	v, err := codec.ReadOptionalU16(d.r)
	d.err = err
	return v
}

func (d *reader) optWorld() *float32 {
	if d.err != nil {
		return nil
	}
	v, err := codec.ReadOptionalWorld(d.r)
	d.err = err
	return v
}

func (d *reader) flags16(dst ...*bool) {
	if d.err != nil {
		return
	}
	d.err = codec.ReadFlags16(d.r, dst...)
}

func (d *reader) flags32(dst ...*bool) {
	if d.err != nil {
		return
	}
	d.err = codec.ReadFlags32(d.r, dst...)
}

// label16 reads an optional 16-bit index and resolves it in cat.
func (d *reader) label16(cat namedb.Category) *namedb.Label {
	v := d.optU16()
	if v == nil {
		return nil
	}
	l := d.names.Identify(cat, uint32(*v))
	return &l
}

// label32 reads an optional 32-bit index and resolves it in cat.
func (d *reader) label32(cat namedb.Category) *namedb.Label {
	if d.err != nil {
		return nil
	}
	v, err := codec.ReadOptionalU32(d.r)
	if err != nil {
		d.err = err
		return nil
	}
	if v == nil {
		return nil
	}
	l := d.names.Identify(cat, *v)
	return &l
}

// bitset reads a 32-bit set and resolves each member index in cat.
func (d *reader) bitset(cat namedb.Category) []namedb.Label {
	if d.err != nil {
		return nil
	}
	bits, err := codec.ReadBitSet32(d.r)
	if err != nil {
		d.err = err
		return nil
	}
	out := make([]namedb.Label, 0, len(bits))
	for _, b := range bits {
		out = append(out, d.names.Identify(cat, b))
	}
	return out
}

// collection splits the packed collection/color-table field: the low
// five bits name the collection, the rest select the color table.
func (d *reader) collection() (*namedb.Label, *uint16) {
	v := d.optU16()
	if v == nil {
		return nil, nil
	}
	l := d.names.Identify(namedb.CategoryCollection, uint32(*v%32))
	clut := *v / 32
	return &l, &clut
}

// MonsterFlags is the 32-bit monster flag word, identical across both
// generations.
type MonsterFlags struct {
	Omniscient             bool `json:"omniscient"`
	Flies                  bool `json:"flies"`
	IsAlien                bool `json:"is_alien"`
	Major                  bool `json:"major"`
	Minor                  bool `json:"minor"`
	CannotSkip             bool `json:"cannot_skip"`
	Floats                 bool `json:"floats"`
	CannotAttack           bool `json:"cannot_attack"`
	UsesSniperLedges       bool `json:"uses_sniper_ledges"`
	IsInvisible            bool `json:"is_invisible"`
	IsSubtlyInvisible      bool `json:"is_subtly_invisible"`
	Kamikaze               bool `json:"kamikaze"`
	Berserker              bool `json:"berserker"`
	Enlarged               bool `json:"enlarged"`
	DelayedHardDeath       bool `json:"delayed_hard_death"`
	FiresSymmetrically     bool `json:"fires_symmetrically"`
	NuclearHardDeath       bool `json:"nuclear_hard_death"`
	CannotFireBackwards    bool `json:"cannot_fire_backwards"`
	CanDieInFlames         bool `json:"can_die_in_flames"`
	WaitsWithClearShot     bool `json:"waits_with_clear_shot"`
	Tiny                   bool `json:"tiny"`
	AttacksImmediately     bool `json:"attacks_immediately"`
	NotAfraidOfWater       bool `json:"not_afraid_of_water"`
	NotAfraidOfSewage      bool `json:"not_afraid_of_sewage"`
	NotAfraidOfLava        bool `json:"not_afraid_of_lava"`
	NotAfraidOfGoo         bool `json:"not_afraid_of_goo"`
	CanTeleportUnderMedia  bool `json:"can_teleport_under_media"`
	ChoosesWeaponsRandomly bool `json:"chooses_weapons_randomly"`
}

func (d *reader) monsterFlags() MonsterFlags {
	var f MonsterFlags
	d.flags32(
		&f.Omniscient,
		&f.Flies,
		&f.IsAlien,
		&f.Major,
		&f.Minor,
		&f.CannotSkip,
		&f.Floats,
		&f.CannotAttack,
		&f.UsesSniperLedges,
		&f.IsInvisible,
		&f.IsSubtlyInvisible,
		&f.Kamikaze,
		&f.Berserker,
		&f.Enlarged,
		&f.DelayedHardDeath,
		&f.FiresSymmetrically,
		&f.NuclearHardDeath,
		&f.CannotFireBackwards,
		&f.CanDieInFlames,
		&f.WaitsWithClearShot,
		&f.Tiny,
		&f.AttacksImmediately,
		&f.NotAfraidOfWater,
		&f.NotAfraidOfSewage,
		&f.NotAfraidOfLava,
		&f.NotAfraidOfGoo,
		&f.CanTeleportUnderMedia,
		&f.ChoosesWeaponsRandomly,
	)
	return f
}

// DamageFlags is the flag word of a damage definition.
type DamageFlags struct {
	AlienDamage bool `json:"alien_damage"`
}

// Damage is a nested damage definition, identical across both
// generations.
type Damage struct {
	Type   *namedb.Label `json:"damage_type"`
	Flags  DamageFlags   `json:"flags"`
	Base   int16         `json:"base"`
	Random int16         `json:"random"`
	Scale  float32       `json:"scale"`
}

func (d *reader) damage() Damage {
	var dmg Damage
	dmg.Type = d.label16(namedb.CategoryDamageType)
	d.flags16(&dmg.Flags.AlienDamage)
	dmg.Base = d.i16()
	dmg.Random = d.i16()
	dmg.Scale = d.fixed()
	return dmg
}

// Attack is a monster attack definition. The whole record is absent when
// its projectile-type field is absent, but all of its bytes are consumed
// either way.
type Attack struct {
	ProjectileType namedb.Label `json:"projectile_type"`
	Repetitions    *uint16      `json:"repetitions"`
	Error          float32      `json:"error"`
	Range          float32      `json:"range"`
	AttackSequence *uint16      `json:"attack_sequence"`
	Dx             float32      `json:"dx"`
	Dy             float32      `json:"dy"`
	Dz             float32      `json:"dz"`
}

func (d *reader) attack() *Attack {
	projectileType := d.label16(namedb.CategoryProjectile)
	var a Attack
	a.Repetitions = d.optU16()
	a.Error = d.angle()
	a.Range = d.world()
	a.AttackSequence = d.optU16()
	a.Dx = d.world()
	a.Dy = d.world()
	a.Dz = d.world()
	if projectileType == nil {
		return nil
	}
	a.ProjectileType = *projectileType
	return &a
}
