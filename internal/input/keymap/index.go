package keymap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/keychord/internal/input/key"
)

// ConflictKind classifies a Conflict.
type ConflictKind uint8

const (
	// ConflictDuplicate means the same action was bound to the same keys
	// twice. The first registration is kept.
	ConflictDuplicate ConflictKind = iota
	// ConflictOverlap means different actions share the same keys. Both
	// are kept and tried in registration order.
	ConflictOverlap
	// ConflictPrefixShadow means a key is both a chord prefix and a
	// standalone shortcut. The standalone action only runs when the chord
	// is abandoned or times out.
	ConflictPrefixShadow
)

// String returns the kind name.
func (k ConflictKind) String() string {
	switch k {
	case ConflictDuplicate:
		return "duplicate"
	case ConflictOverlap:
		return "overlap"
	case ConflictPrefixShadow:
		return "prefix-shadow"
	default:
		return "unknown"
	}
}

// Conflict is a non-fatal problem found while building an Index.
type Conflict struct {
	Kind ConflictKind
	// Shortcut is the later shortcut involved.
	Shortcut KeyboardShortcut
	// Existing is the shortcut that was registered first.
	Existing KeyboardShortcut
}

func (c Conflict) String() string {
	switch c.Kind {
	case ConflictDuplicate:
		return fmt.Sprintf("%s: %s bound twice to %q", c.Kind, c.Shortcut, c.Shortcut.Action)
	case ConflictPrefixShadow:
		return fmt.Sprintf("%s: %s (%s) is also the prefix of %s (%s)",
			c.Kind, c.Shortcut, c.Shortcut.Action, c.Existing, c.Existing.Action)
	default:
		return fmt.Sprintf("%s: %s bound to %q and %q", c.Kind, c.Shortcut, c.Existing.Action, c.Shortcut.Action)
	}
}

// Index maps keys and actions to shortcuts. It is immutable once built
// and safe for concurrent reads.
type Index struct {
	// all holds every shortcut in registration order.
	all []*KeyboardShortcut

	keyToShortcuts    map[key.Code][]*KeyboardShortcut
	actionToShortcuts map[string][]*KeyboardShortcut

	// prefixKeys counts the chords using each prefix key.
	prefixKeys map[key.Code]int
}

func newIndex() *Index {
	return &Index{
		keyToShortcuts:    make(map[key.Code][]*KeyboardShortcut),
		actionToShortcuts: make(map[string][]*KeyboardShortcut),
		prefixKeys:        make(map[key.Code]int),
	}
}

// Build creates an Index from shortcuts in registration order.
//
// A shortcut with the same action and keys as an earlier one is a
// duplicate and is dropped, except that a DisabledDefault removes an
// earlier DefaultShortcut. A DisabledDefault that disables nothing and
// UnsetShortcut placeholders are not indexed.
func Build(shortcuts []KeyboardShortcut) (*Index, []Conflict) {
	idx := newIndex()
	var conflicts []Conflict
	for i := range shortcuts {
		s := shortcuts[i].clone()
		conflicts = append(conflicts, idx.register(&s)...)
	}
	return idx, append(conflicts, idx.prefixShadows()...)
}

// BuildFromDeclarations parses defaults and overrides with p and builds
// an Index. Defaults become DefaultShortcut; overrides become
// UserShortcut, or DisabledDefault when marked disabled.
//
// Declarations that fail to parse are skipped and reported together as
// *BindingError values joined into the returned error. The Index holds
// every declaration that parsed.
func BuildFromDeclarations(p Parser, defaults, overrides []Declaration) (*Index, []Conflict, error) {
	var (
		shortcuts []KeyboardShortcut
		errs      []error
	)
	collect := func(decls []Declaration, user bool) {
		for i, d := range decls {
			typ := DefaultShortcut
			if user {
				typ = UserShortcut
				if d.Disabled {
					typ = DisabledDefault
				}
			}
			s, err := p.ParseDeclaration(d, typ)
			if err != nil {
				pos := d.Position
				if d.Source == "" {
					pos = i
				}
				errs = append(errs, &BindingError{
					Source:   d.Source,
					Index:    pos,
					ActionID: d.ActionID,
					Shortcut: d.Shortcut,
					Err:      err,
				})
				continue
			}
			if s != nil {
				shortcuts = append(shortcuts, *s)
			}
		}
	}
	collect(defaults, false)
	collect(overrides, true)

	idx, conflicts := Build(shortcuts)
	return idx, conflicts, errors.Join(errs...)
}

func (idx *Index) register(s *KeyboardShortcut) []Conflict {
	if s.Type == UnsetShortcut {
		return nil
	}

	for _, other := range idx.actionToShortcuts[s.Action] {
		if !other.sameKeys(*s) {
			continue
		}
		if other.Type == DefaultShortcut && s.Type == DisabledDefault {
			idx.remove(other)
			return nil
		}
		return []Conflict{{Kind: ConflictDuplicate, Shortcut: s.clone(), Existing: other.clone()}}
	}
	if s.Type == DisabledDefault {
		return nil
	}

	var conflicts []Conflict
	for _, other := range idx.keyToShortcuts[s.Descriptor.Key] {
		if other.sameKeys(*s) && other.Action != s.Action {
			conflicts = append(conflicts, Conflict{Kind: ConflictOverlap, Shortcut: s.clone(), Existing: other.clone()})
			break
		}
	}

	idx.all = append(idx.all, s)
	idx.keyToShortcuts[s.Descriptor.Key] = append(idx.keyToShortcuts[s.Descriptor.Key], s)
	idx.actionToShortcuts[s.Action] = append(idx.actionToShortcuts[s.Action], s)
	if p, ok := s.PrefixKey(); ok {
		idx.prefixKeys[p]++
	}
	return conflicts
}

func (idx *Index) remove(s *KeyboardShortcut) {
	drop := func(list []*KeyboardShortcut) []*KeyboardShortcut {
		return slices.DeleteFunc(list, func(o *KeyboardShortcut) bool { return o == s })
	}
	idx.all = drop(idx.all)

	k := s.Descriptor.Key
	if idx.keyToShortcuts[k] = drop(idx.keyToShortcuts[k]); len(idx.keyToShortcuts[k]) == 0 {
		delete(idx.keyToShortcuts, k)
	}
	if idx.actionToShortcuts[s.Action] = drop(idx.actionToShortcuts[s.Action]); len(idx.actionToShortcuts[s.Action]) == 0 {
		delete(idx.actionToShortcuts, s.Action)
	}
	if p, ok := s.PrefixKey(); ok {
		if idx.prefixKeys[p]--; idx.prefixKeys[p] <= 0 {
			delete(idx.prefixKeys, p)
		}
	}
}

func (idx *Index) prefixShadows() []Conflict {
	var conflicts []Conflict
	for _, s := range idx.all {
		if s.IsChord() || !idx.IsPrefixKey(s.Descriptor.Key) {
			continue
		}
		for _, chord := range idx.all {
			if p, ok := chord.PrefixKey(); ok && p == s.Descriptor.Key {
				conflicts = append(conflicts, Conflict{Kind: ConflictPrefixShadow, Shortcut: s.clone(), Existing: chord.clone()})
				break
			}
		}
	}
	return conflicts
}

// Len returns the number of indexed shortcuts.
func (idx *Index) Len() int {
	return len(idx.all)
}

// Shortcuts returns every shortcut in registration order.
func (idx *Index) Shortcuts() []KeyboardShortcut {
	return copyShortcuts(idx.all)
}

// Keys returns every key code with at least one shortcut resolving on
// it, in first-registration order.
func (idx *Index) Keys() []key.Code {
	keys := make([]key.Code, 0, len(idx.keyToShortcuts))
	seen := make(map[key.Code]bool, len(idx.keyToShortcuts))
	for _, s := range idx.all {
		if !seen[s.Descriptor.Key] {
			seen[s.Descriptor.Key] = true
			keys = append(keys, s.Descriptor.Key)
		}
	}
	return keys
}

// ShortcutsForKey returns the shortcuts resolving on code, chords
// included, in registration order.
func (idx *Index) ShortcutsForKey(code key.Code) []KeyboardShortcut {
	return copyShortcuts(idx.keyToShortcuts[code])
}

// ShortcutsForAction returns the shortcuts bound to an action.
func (idx *Index) ShortcutsForAction(actionID string) []KeyboardShortcut {
	return copyShortcuts(idx.actionToShortcuts[actionID])
}

// IsPrefixKey returns true if code starts at least one chord.
func (idx *Index) IsPrefixKey(code key.Code) bool {
	return idx.prefixKeys[code] > 0
}

// PrefixKeys returns the chord prefix keys in first-registration order.
func (idx *Index) PrefixKeys() []key.Code {
	var keys []key.Code
	seen := make(map[key.Code]bool)
	for _, s := range idx.all {
		if p, ok := s.PrefixKey(); ok && !seen[p] {
			seen[p] = true
			keys = append(keys, p)
		}
	}
	return keys
}

// ActionsForKey returns the distinct actions of every shortcut resolving
// on code, chords included.
func (idx *Index) ActionsForKey(code key.Code) []string {
	return actionIDs(idx.keyToShortcuts[code], func(*KeyboardShortcut) bool { return true })
}

// StandaloneActions returns the distinct actions bound to code without
// a prefix, in registration order.
func (idx *Index) StandaloneActions(code key.Code) []string {
	return actionIDs(idx.keyToShortcuts[code], func(s *KeyboardShortcut) bool { return !s.IsChord() })
}

// ChordActions returns the distinct actions of chords that start with
// prefix and resolve on code, in registration order.
func (idx *Index) ChordActions(prefix, code key.Code) []string {
	return actionIDs(idx.keyToShortcuts[code], func(s *KeyboardShortcut) bool {
		p, ok := s.PrefixKey()
		return ok && p == prefix
	})
}

// DescriptorsForAction returns the resolving descriptor of every
// shortcut bound to an action.
func (idx *Index) DescriptorsForAction(actionID string) []key.Descriptor {
	list := idx.actionToShortcuts[actionID]
	descs := make([]key.Descriptor, 0, len(list))
	for _, s := range list {
		descs = append(descs, s.Descriptor)
	}
	return descs
}

// KeysForActions returns the resolving key codes bound to the given
// actions, in argument order.
func (idx *Index) KeysForActions(actionIDs ...string) []key.Code {
	var keys []key.Code
	for _, id := range actionIDs {
		for _, s := range idx.actionToShortcuts[id] {
			keys = append(keys, s.Descriptor.Key)
		}
	}
	return keys
}

// TitleForAction returns the display form of the first shortcut bound
// to an action.
func (idx *Index) TitleForAction(actionID string) (string, bool) {
	list := idx.actionToShortcuts[actionID]
	if len(list) == 0 {
		return "", false
	}
	return list[0].String(), true
}

// MatchesAction reports whether code triggers actionID as a standalone
// shortcut.
func (idx *Index) MatchesAction(code key.Code, actionID string) bool {
	for _, s := range idx.actionToShortcuts[actionID] {
		if !s.IsChord() && s.Descriptor.Key == code {
			return true
		}
	}
	return false
}

// BindableShortcuts returns the shortcuts of each action in argument
// order, with an UnsetShortcut placeholder for actions without any.
func (idx *Index) BindableShortcuts(actionIDs []string) []KeyboardShortcut {
	var out []KeyboardShortcut
	for _, id := range actionIDs {
		list := idx.actionToShortcuts[id]
		if len(list) == 0 {
			out = append(out, KeyboardShortcut{Descriptor: key.EmptyDescriptor, Action: id, Type: UnsetShortcut})
			continue
		}
		for _, s := range list {
			out = append(out, s.clone())
		}
	}
	return out
}

func copyShortcuts(list []*KeyboardShortcut) []KeyboardShortcut {
	if len(list) == 0 {
		return nil
	}
	out := make([]KeyboardShortcut, len(list))
	for i, s := range list {
		out[i] = s.clone()
	}
	return out
}

func actionIDs(list []*KeyboardShortcut, keep func(*KeyboardShortcut) bool) []string {
	var ids []string
	for _, s := range list {
		if keep(s) && !slices.Contains(ids, s.Action) {
			ids = append(ids, s.Action)
		}
	}
	return ids
}
