// Package namedb resolves the numeric indices found in physics records
// into human-readable names. Databases are optional at every level: a
// missing category or an unmapped index falls back to the bare number.
package namedb

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Category identifies one name table.
type Category string

const (
	CategoryMonster      Category = "monster"
	CategoryMonsterClass Category = "monster_class"
	CategoryProjectile   Category = "projectile"
	CategoryWeapon       Category = "weapon"
	CategoryWeaponClass  Category = "weapon_class"
	CategoryItem         Category = "item"
	CategoryEffect       Category = "effect"
	CategoryDamageType   Category = "damage_type"
	CategoryCollection   Category = "collection"
	CategorySound        Category = "sound"
)

// Categories lists every name table, in the order the loaders scan them.
var Categories = []Category{
	CategoryMonster,
	CategoryMonsterClass,
	CategoryProjectile,
	CategoryWeapon,
	CategoryWeaponClass,
	CategoryItem,
	CategoryEffect,
	CategoryDamageType,
	CategoryCollection,
	CategorySound,
}

// Label is a resolved index: either a name, or the original number when
// no mapping exists. It marshals to a JSON string or number accordingly.
type Label struct {
	Name  string
	Index uint32
}

// Named reports whether the label carries a resolved name.
func (l Label) Named() bool { return l.Name != "" }

func (l Label) MarshalJSON() ([]byte, error) {
	if l.Named() {
		return json.Marshal(l.Name)
	}
	return json.Marshal(l.Index)
}

func (l Label) String() string {
	if l.Named() {
		return l.Name
	}
	return fmt.Sprintf("%d", l.Index)
}

// DB maps indices to names for one category. The zero value is an empty
// database that resolves nothing.
type DB struct {
	names []string
}

// Identify resolves index to its name, or echoes the index back when the
// database has no entry for it.
func (d *DB) Identify(index uint32) Label {
	if d != nil && int(index) < len(d.names) && d.names[index] != "" {
		return Label{Name: d.names[index], Index: index}
	}
	return Label{Index: index}
}

// builtinWeaponClasses is used for the weapon-class category whenever no
// external mapping supplies one.
var builtinWeaponClasses = []string{
	"melee",
	"normal",
	"dual function",
	"dual wield",
	"multipurpose",
}

// Set holds one database per category.
type Set struct {
	dbs map[Category]*DB
}

// Defaults returns a Set with no external mappings: everything resolves
// to numbers except the builtin weapon classes.
func Defaults() *Set {
	return &Set{dbs: map[Category]*DB{
		CategoryWeaponClass: {names: builtinWeaponClasses},
	}}
}

// Identify resolves index within the given category.
func (s *Set) Identify(cat Category, index uint32) Label {
	return s.dbs[cat].Identify(index)
}

// LoadDir builds a Set from a directory containing files like
// "monster_names.txt": one name per line, with blank lines marking gaps
// in the numbering. Missing files yield empty databases.
func LoadDir(dir string) (*Set, error) {
	s := Defaults()
	for _, cat := range Categories {
		db, err := loadFile(filepath.Join(dir, string(cat)+"_names.txt"))
		if err != nil {
			return nil, err
		}
		if db == nil {
			continue
		}
		s.dbs[cat] = db
	}
	return s, nil
}

func loadFile(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	db := &DB{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		db.names = append(db.names, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return db, nil
}
