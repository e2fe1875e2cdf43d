package physics

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/physics-dump/internal/namedb"
	"github.com/rcliao/physics-dump/internal/wad"
)

// record builds a fixture payload as a sequence of big-endian words.
type record struct {
	buf bytes.Buffer
}

func (r *record) u16(vals ...uint16) *record {
	for _, v := range vals {
		binary.Write(&r.buf, binary.BigEndian, v)
	}
	return r
}

func (r *record) u32(vals ...uint32) *record {
	for _, v := range vals {
		binary.Write(&r.buf, binary.BigEndian, v)
	}
	return r
}

func (r *record) bytes() []byte { return r.buf.Bytes() }

func zeros(n int) []byte { return make([]byte, n) }

func fill(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func writeFlatChunk(buf *bytes.Buffer, tag wad.Tag, count, size uint16, payload []byte) {
	buf.Write(tag[:])
	binary.Write(buf, binary.BigEndian, uint32(0))
	binary.Write(buf, binary.BigEndian, count)
	binary.Write(buf, binary.BigEndian, size)
	buf.Write(payload)
}

// buildFlat assembles a complete flat-dialect file with one record per
// definition chunk.
func buildFlat(monster, effect, projectile, weapon, movement []byte) []byte {
	var buf bytes.Buffer
	writeFlatChunk(&buf, M1MonsterTag, 1, uint16(len(monster)), monster)
	writeFlatChunk(&buf, M1EffectTag, 1, uint16(len(effect)), effect)
	writeFlatChunk(&buf, M1ProjectileTag, 1, uint16(len(projectile)), projectile)
	writeFlatChunk(&buf, M1PhysicsTag, 1, uint16(len(movement)), movement)
	writeFlatChunk(&buf, M1WeaponTag, 1, uint16(len(weapon)), weapon)
	return buf.Bytes()
}

func writeArchiveChunk(buf *bytes.Buffer, tag wad.Tag, payload []byte) {
	buf.Write(tag[:])
	binary.Write(buf, binary.BigEndian, uint32(0)) // next offset
	binary.Write(buf, binary.BigEndian, uint32(len(payload)))
	binary.Write(buf, binary.BigEndian, uint32(0)) // reserved
	buf.Write(payload)
}

// buildArchive assembles a complete archive-dialect file whose single
// subfile holds one record per definition chunk.
func buildArchive(monster, effect, projectile, weapon, movement []byte) []byte {
	var subfile bytes.Buffer
	writeArchiveChunk(&subfile, M2MonsterTag, monster)
	writeArchiveChunk(&subfile, M2EffectTag, effect)
	writeArchiveChunk(&subfile, M2ProjectileTag, projectile)
	writeArchiveChunk(&subfile, M2WeaponTag, weapon)
	writeArchiveChunk(&subfile, M2PhysicsTag, movement)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(2)) // version
	binary.Write(&buf, binary.BigEndian, uint16(1)) // data version
	buf.Write(zeros(64))                            // name
	binary.Write(&buf, binary.BigEndian, uint32(0)) // checksum
	binary.Write(&buf, binary.BigEndian, uint32(88+subfile.Len()))
	binary.Write(&buf, binary.BigEndian, uint16(1))  // subfile count
	binary.Write(&buf, binary.BigEndian, uint16(0))  // extra data size
	binary.Write(&buf, binary.BigEndian, uint16(16)) // entry header size
	binary.Write(&buf, binary.BigEndian, uint16(10)) // directory entry base size
	binary.Write(&buf, binary.BigEndian, uint32(0))  // parent checksum
	buf.Write(subfile.Bytes())
	binary.Write(&buf, binary.BigEndian, uint32(88))
	binary.Write(&buf, binary.BigEndian, uint32(subfile.Len()))
	binary.Write(&buf, binary.BigEndian, uint16(0)) // index
	return buf.Bytes()
}

func loadNames(t *testing.T, files map[string]string) *namedb.Set {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := namedb.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDetectDialect(t *testing.T) {
	for _, tag := range []wad.Tag{M1MonsterTag, M1EffectTag, M1ProjectileTag, M1PhysicsTag, M1WeaponTag} {
		data := append(tag[:4:4], zeros(16)...)
		d, err := DetectDialect(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("detect %q: %v", tag, err)
		}
		if d != DialectFlat {
			t.Errorf("expected flat for tag %q, got %s", tag, d)
		}
	}

	d, err := DetectDialect(bytes.NewReader(zeros(88)))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if d != DialectArchive {
		t.Errorf("expected archive for untagged input, got %s", d)
	}
}

func TestDetectDialectDoesNotConsume(t *testing.T) {
	data := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), zeros(m1ProjectileSize), zeros(m1WeaponSize), zeros(200))
	r := bytes.NewReader(data)
	if _, err := DetectDialect(r); err != nil {
		t.Fatalf("detect: %v", err)
	}
	// The full stream must still be readable from the start.
	if _, err := ReadM1(r, namedb.Defaults()); err != nil {
		t.Fatalf("read after detect: %v", err)
	}
}

func TestOpenArchiveRejectsFlat(t *testing.T) {
	data := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), zeros(m1ProjectileSize), zeros(m1WeaponSize), zeros(200))
	_, err := OpenArchive(bytes.NewReader(data))
	var de *DialectError
	if !errors.As(err, &de) {
		t.Fatalf("expected DialectError, got %v", err)
	}
	if de.Error() != "this is a flat-dialect physics file, not an archive" {
		t.Errorf("unexpected message %q", de.Error())
	}
}

func TestReadM1RejectsArchive(t *testing.T) {
	data := buildArchive(zeros(m2MonsterSize), zeros(m2EffectSize), zeros(m2ProjectileSize), zeros(m2WeaponSize), zeros(208))
	_, err := ReadM1(bytes.NewReader(data), namedb.Defaults())
	var de *DialectError
	if !errors.As(err, &de) {
		t.Fatalf("expected DialectError, got %v", err)
	}
	if de.Want != DialectFlat || de.Got != DialectArchive {
		t.Errorf("unexpected dialects want=%s got=%s", de.Want, de.Got)
	}
}

func TestDecodeRecordsSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	writeFlatChunk(&buf, M1MonsterTag, 1, 10, zeros(10))
	writeFlatChunk(&buf, M1EffectTag, 0, 0, nil)
	writeFlatChunk(&buf, M1ProjectileTag, 0, 0, nil)
	writeFlatChunk(&buf, M1PhysicsTag, 0, 0, nil)
	writeFlatChunk(&buf, M1WeaponTag, 0, 0, nil)

	_, err := ReadM1(bytes.NewReader(buf.Bytes()), namedb.Defaults())
	var rse *RecordSizeError
	if !errors.As(err, &rse) {
		t.Fatalf("expected RecordSizeError, got %v", err)
	}
	if rse.Kind != "monster" || rse.PayloadLen != 10 || rse.RecordSize != m1MonsterSize {
		t.Errorf("unexpected error detail %+v", rse)
	}
}

func TestReadM1MissingChunk(t *testing.T) {
	var buf bytes.Buffer
	writeFlatChunk(&buf, M1MonsterTag, 0, 0, nil)
	writeFlatChunk(&buf, M1EffectTag, 0, 0, nil)

	_, err := ReadM1(bytes.NewReader(buf.Bytes()), namedb.Defaults())
	var nf *wad.ChunkNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ChunkNotFoundError, got %v", err)
	}
	if nf.Tag != M1ProjectileTag {
		t.Errorf("expected missing tag proj, got %q", nf.Tag)
	}
}

func TestReadM1MonsterAllZero(t *testing.T) {
	data := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), zeros(m1ProjectileSize), zeros(m1WeaponSize), zeros(200))

	p, err := ReadM1(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(p.MonsterDefinitions) != 1 {
		t.Fatalf("expected 1 monster, got %d", len(p.MonsterDefinitions))
	}
	m := p.MonsterDefinitions[0]
	// Without a name mapping the name is the numeric index.
	if m.Name.Named() || m.Name.Index != 0 {
		t.Errorf("expected numeric name 0, got %v", m.Name)
	}
	// A zero word is a present value, not an absent one.
	if m.Vitality == nil || *m.Vitality != 0 {
		t.Errorf("expected present vitality 0, got %v", m.Vitality)
	}
	if m.Collection == nil || m.Collection.Index != 0 {
		t.Errorf("expected present collection 0, got %v", m.Collection)
	}
	if m.Clut == nil || *m.Clut != 0 {
		t.Errorf("expected present clut 0, got %v", m.Clut)
	}
	if m.Class == nil || m.Class.Index != 0 {
		t.Errorf("expected present class 0, got %v", m.Class)
	}
	if m.Immunities == nil || len(m.Immunities) != 0 {
		t.Errorf("expected empty non-nil immunities, got %v", m.Immunities)
	}
	if m.Flags.Flies || m.Flags.IsAlien || m.Flags.ChoosesWeaponsRandomly {
		t.Errorf("expected all flags clear, got %+v", m.Flags)
	}
	if m.ShrapnelRadius == nil || *m.ShrapnelRadius != 0 {
		t.Errorf("expected present shrapnel radius 0, got %v", m.ShrapnelRadius)
	}
	if m.MeleeAttack == nil {
		t.Fatal("expected present melee attack")
	}
	if m.MeleeAttack.ProjectileType.Index != 0 {
		t.Errorf("expected attack projectile 0, got %v", m.MeleeAttack.ProjectileType)
	}
	if m.RangedAttack == nil {
		t.Error("expected present ranged attack")
	}
}

func TestReadM1MonsterAllAbsent(t *testing.T) {
	data := buildFlat(fill(m1MonsterSize, 0xFF), zeros(m1EffectSize), zeros(m1ProjectileSize), zeros(m1WeaponSize), zeros(200))

	p, err := ReadM1(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m := p.MonsterDefinitions[0]
	if m.Collection != nil || m.Clut != nil {
		t.Errorf("expected absent collection, got %v/%v", m.Collection, m.Clut)
	}
	if m.Vitality != nil {
		t.Errorf("expected absent vitality, got %d", *m.Vitality)
	}
	if m.Class != nil {
		t.Errorf("expected absent class, got %v", m.Class)
	}
	if len(m.Immunities) != 32 {
		t.Errorf("expected 32 immunities, got %d", len(m.Immunities))
	}
	if m.ShrapnelRadius != nil {
		t.Errorf("expected absent shrapnel radius, got %v", *m.ShrapnelRadius)
	}
	if m.ShrapnelDamage.Type != nil {
		t.Errorf("expected absent damage type, got %v", m.ShrapnelDamage.Type)
	}
	if !m.ShrapnelDamage.Flags.AlienDamage {
		t.Error("expected alien damage flag set")
	}
	// An absent projectile type suppresses the whole attack.
	if m.MeleeAttack != nil {
		t.Errorf("expected absent melee attack, got %+v", m.MeleeAttack)
	}
	if m.RangedAttack != nil {
		t.Errorf("expected absent ranged attack, got %+v", m.RangedAttack)
	}
}

func TestReadM1Effect(t *testing.T) {
	effect := (&record{}).
		u16(33).     // collection 1, clut 1
		u16(7).      // sequence
		u16(0b1001). // flags
		bytes()
	data := buildFlat(zeros(m1MonsterSize), effect, zeros(m1ProjectileSize), zeros(m1WeaponSize), zeros(200))

	p, err := ReadM1(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	e := p.EffectDefinitions[0]
	if e.Collection == nil || e.Collection.Index != 1 {
		t.Errorf("expected collection 1, got %v", e.Collection)
	}
	if e.Clut == nil || *e.Clut != 1 {
		t.Errorf("expected clut 1, got %v", e.Clut)
	}
	if e.Sequence == nil || *e.Sequence != 7 {
		t.Errorf("expected sequence 7, got %v", e.Sequence)
	}
	if !e.Flags.EndWhenAnimationLoops || e.Flags.EndWhenTransferAnimationLoops ||
		e.Flags.SoundOnly || !e.Flags.MakeTwinVisible {
		t.Errorf("unexpected flags %+v", e.Flags)
	}
}

func TestReadM1ProjectileContrailNames(t *testing.T) {
	// The contrail tick and count fields resolve through the effect name
	// table.
	names := loadNames(t, map[string]string{
		"effect_names.txt":     "Spark\nSmoke\nFlame\nTrail\n",
		"projectile_names.txt": "Bolt\n",
	})
	projectile := (&record{}).
		u16(0).          // collection
		u16(0).          // sequence
		u16(1).          // detonation effect: Smoke
		u16(0).          // contrail effect: Spark
		u16(2).          // ticks between contrails
		u16(3).          // maximum contrails
		u16(0x0400).     // radius
		u16(0).          // area of effect
		u16(0).          // damage type
		u16(0).          // damage flags
		u16(5).          // damage base
		u16(2).          // damage random
		u32(0x00010000). // damage scale
		u16(0b11).       // flags: guided, stop when animation loops
		u16(0x0400).     // speed
		u16(0x0800).     // maximum range
		u16(4).          // flyby sound
		bytes()
	data := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), projectile, zeros(m1WeaponSize), zeros(200))

	p, err := ReadM1(bytes.NewReader(data), names)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	pr := p.ProjectileDefinitions[0]
	if pr.Name.Name != "Bolt" {
		t.Errorf("expected name Bolt, got %v", pr.Name)
	}
	if pr.DetonationEffect == nil || pr.DetonationEffect.Name != "Smoke" {
		t.Errorf("expected detonation Smoke, got %v", pr.DetonationEffect)
	}
	if pr.TicksBetweenContrails == nil || pr.TicksBetweenContrails.Name != "Flame" {
		t.Errorf("expected ticks label Flame, got %v", pr.TicksBetweenContrails)
	}
	if pr.MaximumContrails == nil || pr.MaximumContrails.Name != "Trail" {
		t.Errorf("expected maximum label Trail, got %v", pr.MaximumContrails)
	}
	if pr.Radius != 1.0 {
		t.Errorf("expected radius 1.0, got %v", pr.Radius)
	}
	if pr.Damage.Base != 5 || pr.Damage.Random != 2 || pr.Damage.Scale != 1.0 {
		t.Errorf("unexpected damage %+v", pr.Damage)
	}
	if !pr.Flags.Guided || !pr.Flags.StopWhenAnimationLoops || pr.Flags.Persistent {
		t.Errorf("unexpected flags %+v", pr.Flags)
	}
	if pr.Speed != 1.0 || pr.MaximumRange != 2.0 {
		t.Errorf("unexpected speed/range %v/%v", pr.Speed, pr.MaximumRange)
	}
}

func TestReadM1WeaponTriggerInterleave(t *testing.T) {
	weapon := (&record{}).
		u16(1).             // item type
		u16(0).             // weapon class: melee
		u16(0b101).         // flags
		u16(2, 8).          // trigger 0 ammunition type, rounds per magazine
		u16(3, 0x8000).     // trigger 1 ammunition type, rounds per magazine
		u32(0x00010000).    // firing light intensity
		u16(30).            // firing intensity decay ticks
		u32(0, 0, 0, 0).    // idle height, bob amplitude, kick height, reload height
		u32(0, 0).          // idle width, horizontal amplitude
		u16(5).             // collection
		u16(0, 1, 2).       // idle, firing, reloading sequences
		u16(0xAAAA).        // unused
		u16(3, 4).          // charging, charged sequences
		u16(10, 11).        // ticks per round
		u16(12, 13).        // await reload, ready ticks
		u16(14, 15).        // recovery ticks
		u16(16, 17).        // charging ticks
		u16(0x0400, 0x0200). // recoil magnitudes
		u16(20, 21).        // firing sounds
		u16(22, 23).        // click sounds
		u16(24).            // trigger 0 reloading sound
		u16(25).            // trigger 0 charging sound
		u16(26, 27).        // shell casing sounds
		u16(0x0400, 0x0400). // sound activation ranges
		u16(1, 2).          // projectile types
		u16(256, 0).        // theta errors
		u16(0, 0).          // trigger 0 dx, dz
		u16(0x0400, 0).     // trigger 1 dx, dz
		u16(2, 3).          // burst counts
		u16(0xBBBB).        // unused
		bytes()
	if len(weapon) != m1WeaponSize {
		t.Fatalf("fixture is %d bytes, want %d", len(weapon), m1WeaponSize)
	}
	data := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), zeros(m1ProjectileSize), weapon, zeros(200))

	p, err := ReadM1(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	w := p.WeaponDefinitions[0]
	if w.WeaponClass == nil || w.WeaponClass.Name != "melee" {
		t.Errorf("expected weapon class melee, got %v", w.WeaponClass)
	}
	if !w.Flags.IsAutomatic || w.Flags.Unknown || !w.Flags.DisappearsAfterUse {
		t.Errorf("unexpected flags %+v", w.Flags)
	}
	if w.FiringLightIntensity != 1.0 {
		t.Errorf("expected intensity 1.0, got %v", w.FiringLightIntensity)
	}
	if w.AwaitReloadTicks == nil || *w.AwaitReloadTicks != 12 {
		t.Errorf("expected await reload 12, got %v", w.AwaitReloadTicks)
	}
	if w.ReadyTicks == nil || *w.ReadyTicks != 13 {
		t.Errorf("expected ready 13, got %v", w.ReadyTicks)
	}

	t0, t1 := w.Triggers[0], w.Triggers[1]
	if t0.AmmunitionType == nil || t0.AmmunitionType.Index != 2 {
		t.Errorf("expected trigger 0 ammo 2, got %v", t0.AmmunitionType)
	}
	if t0.RoundsPerMagazine == nil || *t0.RoundsPerMagazine != 8 {
		t.Errorf("expected trigger 0 rounds 8, got %v", t0.RoundsPerMagazine)
	}
	if t1.AmmunitionType == nil || t1.AmmunitionType.Index != 3 {
		t.Errorf("expected trigger 1 ammo 3, got %v", t1.AmmunitionType)
	}
	if t1.RoundsPerMagazine != nil {
		t.Errorf("expected absent trigger 1 rounds, got %d", *t1.RoundsPerMagazine)
	}
	if t0.TicksPerRound == nil || *t0.TicksPerRound != 10 || t1.TicksPerRound == nil || *t1.TicksPerRound != 11 {
		t.Errorf("unexpected ticks per round %v/%v", t0.TicksPerRound, t1.TicksPerRound)
	}
	if t0.RecoilMagnitude != 1.0 || t1.RecoilMagnitude != 0.5 {
		t.Errorf("unexpected recoil %v/%v", t0.RecoilMagnitude, t1.RecoilMagnitude)
	}
	if t0.ReloadingSound == nil || t0.ReloadingSound.Index != 24 {
		t.Errorf("expected trigger 0 reloading sound 24, got %v", t0.ReloadingSound)
	}
	// The second trigger has no reloading sound field on the wire.
	if t1.ReloadingSound != nil {
		t.Errorf("expected absent trigger 1 reloading sound, got %v", t1.ReloadingSound)
	}
	// It shares the first trigger's charging sound.
	if t1.ChargingSound == nil || t1.ChargingSound.Index != 25 {
		t.Errorf("expected shared charging sound 25, got %v", t1.ChargingSound)
	}
	if t0.ProjectileType == nil || t0.ProjectileType.Index != 1 ||
		t1.ProjectileType == nil || t1.ProjectileType.Index != 2 {
		t.Errorf("unexpected projectile types %v/%v", t0.ProjectileType, t1.ProjectileType)
	}
	if t0.ThetaError != 180.0 {
		t.Errorf("expected theta 180, got %v", t0.ThetaError)
	}
	if t1.Dx != 1.0 || t1.Dz != 0 {
		t.Errorf("unexpected trigger 1 offsets %v/%v", t1.Dx, t1.Dz)
	}
	if t0.BurstCount == nil || *t0.BurstCount != 2 || t1.BurstCount == nil || *t1.BurstCount != 3 {
		t.Errorf("unexpected burst counts %v/%v", t0.BurstCount, t1.BurstCount)
	}
}

func TestReadM1Movement(t *testing.T) {
	movement := &record{}
	// 25 walking then 25 running fields.
	movement.u32(0x00020000)
	for i := 0; i < 24; i++ {
		movement.u32(0)
	}
	movement.u32(0x00040000)
	for i := 0; i < 24; i++ {
		movement.u32(0)
	}
	data := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), zeros(m1ProjectileSize), zeros(m1WeaponSize), movement.bytes())

	p, err := ReadM1(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if p.Physics.Walking.MaximumForwardVelocity != 2.0 {
		t.Errorf("expected walking forward 2.0, got %v", p.Physics.Walking.MaximumForwardVelocity)
	}
	if p.Physics.Running.MaximumForwardVelocity != 4.0 {
		t.Errorf("expected running forward 4.0, got %v", p.Physics.Running.MaximumForwardVelocity)
	}
}

func TestReadM2AllZero(t *testing.T) {
	data := buildArchive(zeros(m2MonsterSize), zeros(m2EffectSize), zeros(m2ProjectileSize), zeros(m2WeaponSize), zeros(208))

	p, err := ReadM2(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(p.MonsterDefinitions) != 1 || len(p.EffectDefinitions) != 1 ||
		len(p.ProjectileDefinitions) != 1 || len(p.WeaponDefinitions) != 1 {
		t.Fatalf("unexpected definition counts %d/%d/%d/%d",
			len(p.MonsterDefinitions), len(p.EffectDefinitions),
			len(p.ProjectileDefinitions), len(p.WeaponDefinitions))
	}
	m := p.MonsterDefinitions[0]
	if m.TeleportInSequence == nil || *m.TeleportInSequence != 0 {
		t.Errorf("expected present teleport-in 0, got %v", m.TeleportInSequence)
	}
	if m.ContrailEffect == nil || m.ContrailEffect.Index != 0 {
		t.Errorf("expected present contrail 0, got %v", m.ContrailEffect)
	}
	e := p.EffectDefinitions[0]
	if e.DelaySound == nil || e.DelaySound.Index != 0 {
		t.Errorf("expected present delay sound 0, got %v", e.DelaySound)
	}
	w := p.WeaponDefinitions[0]
	if w.PowerupType == nil || w.PowerupType.Index != 0 {
		t.Errorf("expected present powerup type 0, got %v", w.PowerupType)
	}
	if w.Triggers[0].ChargedSound == nil || w.Triggers[1].ChargedSound == nil {
		t.Error("expected present charged sounds in both triggers")
	}
}

func TestReadM2Effect(t *testing.T) {
	effect := (&record{}).
		u16(0).          // collection
		u16(3).          // sequence
		u32(0x00010000). // sound pitch
		u16(0b10000).    // flags: media effect
		u16(45).         // delay
		u16(0x8000).     // delay sound absent
		bytes()
	data := buildArchive(zeros(m2MonsterSize), effect, zeros(m2ProjectileSize), zeros(m2WeaponSize), zeros(208))

	p, err := ReadM2(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	e := p.EffectDefinitions[0]
	if e.SoundPitch != 1.0 {
		t.Errorf("expected pitch 1.0, got %v", e.SoundPitch)
	}
	if !e.Flags.MediaEffect || e.Flags.SoundOnly {
		t.Errorf("unexpected flags %+v", e.Flags)
	}
	if e.Delay == nil || *e.Delay != 45 {
		t.Errorf("expected delay 45, got %v", e.Delay)
	}
	if e.DelaySound != nil {
		t.Errorf("expected absent delay sound, got %v", e.DelaySound)
	}
}

func TestReadM2ProjectileFlags(t *testing.T) {
	projectile := (&record{}).
		u16(0, 0).          // collection, sequence
		u16(0, 0, 0, 0, 0). // effects and promotion
		u16(0).             // promotion (6th label)
		u16(0, 0).          // radius, area of effect
		u16(0, 0).          // damage type, flags
		u16(0, 0).          // damage base, random
		u32(0).             // damage scale
		u32(1 << 22).       // flags: passes through objects
		u16(0, 0).          // speed, range
		u32(0).             // sound pitch
		u16(0, 0).          // flyby, rebound sounds
		bytes()
	if len(projectile) != m2ProjectileSize {
		t.Fatalf("fixture is %d bytes, want %d", len(projectile), m2ProjectileSize)
	}
	data := buildArchive(zeros(m2MonsterSize), zeros(m2EffectSize), projectile, zeros(m2WeaponSize), zeros(208))

	p, err := ReadM2(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	pr := p.ProjectileDefinitions[0]
	if !pr.Flags.PassesThroughObjects {
		t.Error("expected passes-through-objects flag set")
	}
	if pr.Flags.Guided || pr.Flags.PenetratesMediaBoundary {
		t.Errorf("unexpected flags %+v", pr.Flags)
	}
	if pr.MediaProjectilePromotion == nil || pr.MediaProjectilePromotion.Index != 0 {
		t.Errorf("expected present promotion 0, got %v", pr.MediaProjectilePromotion)
	}
}

func TestReadM2MovementSplashHeight(t *testing.T) {
	movement := &record{}
	// 26 walking then 26 running fields; splash height is the 25th.
	for i := 0; i < 24; i++ {
		movement.u32(0)
	}
	movement.u32(0x00018000) // walking splash height 1.5
	movement.u32(0)
	for i := 0; i < 26; i++ {
		movement.u32(0)
	}
	data := buildArchive(zeros(m2MonsterSize), zeros(m2EffectSize), zeros(m2ProjectileSize), zeros(m2WeaponSize), movement.bytes())

	p, err := ReadM2(bytes.NewReader(data), namedb.Defaults())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if p.Physics.Walking.SplashHeight != 1.5 {
		t.Errorf("expected splash height 1.5, got %v", p.Physics.Walking.SplashHeight)
	}
	if p.Physics.Walking.HalfCameraSeparation != 0 {
		t.Errorf("expected separation 0, got %v", p.Physics.Walking.HalfCameraSeparation)
	}
}

func TestReadM2MissingChunk(t *testing.T) {
	var subfile bytes.Buffer
	writeArchiveChunk(&subfile, M2MonsterTag, zeros(m2MonsterSize))

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(2))
	binary.Write(&buf, binary.BigEndian, uint16(1))
	buf.Write(zeros(64))
	binary.Write(&buf, binary.BigEndian, uint32(0))
	binary.Write(&buf, binary.BigEndian, uint32(88+subfile.Len()))
	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(16))
	binary.Write(&buf, binary.BigEndian, uint16(10))
	binary.Write(&buf, binary.BigEndian, uint32(0))
	buf.Write(subfile.Bytes())
	binary.Write(&buf, binary.BigEndian, uint32(88))
	binary.Write(&buf, binary.BigEndian, uint32(subfile.Len()))
	binary.Write(&buf, binary.BigEndian, uint16(0))

	_, err := ReadM2(bytes.NewReader(buf.Bytes()), namedb.Defaults())
	var nf *wad.ChunkNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ChunkNotFoundError, got %v", err)
	}
	if nf.Tag != M2EffectTag {
		t.Errorf("expected missing tag FXpx, got %q", nf.Tag)
	}
}

func TestDecodeAutoDetect(t *testing.T) {
	flat := buildFlat(zeros(m1MonsterSize), zeros(m1EffectSize), zeros(m1ProjectileSize), zeros(m1WeaponSize), zeros(200))
	out, err := Decode(bytes.NewReader(flat), namedb.Defaults())
	if err != nil {
		t.Fatalf("decode flat: %v", err)
	}
	if _, ok := out.(*M1Physics); !ok {
		t.Errorf("expected *M1Physics, got %T", out)
	}

	archive := buildArchive(zeros(m2MonsterSize), zeros(m2EffectSize), zeros(m2ProjectileSize), zeros(m2WeaponSize), zeros(208))
	out, err = Decode(bytes.NewReader(archive), namedb.Defaults())
	if err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if _, ok := out.(*M2Physics); !ok {
		t.Errorf("expected *M2Physics, got %T", out)
	}
}
