package broadcast

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"l2domains/internal/domain"
)

// Variant identifies one member of the closed Function union. Variants are bit
// flags so an edge kind can declare the set it accepts.
type Variant uint16

const (
	VariantIdentity Variant = 1 << iota
	VariantFilterByOuterTag
	VariantFilterByVlanID
	VariantAssignVlanFromOuterTag
	VariantClearVlanID
	VariantPopTag
	VariantPushTag
	VariantPushVlanID
	VariantSetVlanID
	VariantTranslateVlan
)

var variantNames = map[Variant]string{
	VariantIdentity:               "Identity",
	VariantFilterByOuterTag:       "FilterByOuterTag",
	VariantFilterByVlanID:         "FilterByVlanId",
	VariantAssignVlanFromOuterTag: "AssignVlanFromOuterTag",
	VariantClearVlanID:            "ClearVlanId",
	VariantPopTag:                 "PopTag",
	VariantPushTag:                "PushTag",
	VariantPushVlanID:             "PushVlanId",
	VariantSetVlanID:              "SetVlanId",
	VariantTranslateVlan:          "TranslateVlan",
}

func (v Variant) String() string {
	var names []string
	for bit := VariantIdentity; bit <= VariantTranslateVlan; bit <<= 1 {
		if v&bit != 0 {
			names = append(names, variantNames[bit])
		}
	}
	return strings.Join(names, "|")
}

// Function is a pure transformation of a State. Apply returns ok == false when
// the frame is dropped. Functions compare equal iff their String forms are equal.
//
// The union is sealed: only the constructors in this package produce Functions.
type Function interface {
	Apply(s State) (State, bool)
	// Variants returns every variant used, including inside compositions
	Variants() Variant
	String() string
	sealed()
}

// Equal reports whether two functions are the same value
func Equal(f, g Function) bool {
	return f.String() == g.String()
}

type identity struct{}

// Identity returns the function that passes every state unchanged
func Identity() Function { return identity{} }

func (identity) Apply(s State) (State, bool) { return s, true }
func (identity) Variants() Variant           { return VariantIdentity }
func (identity) String() string              { return "Identity" }
func (identity) sealed()                     {}

func isIdentity(f Function) bool {
	_, ok := f.(identity)
	return ok
}

type compose struct {
	first, second Function
}

// Compose returns the function applying first, then second. Evaluation stops at
// the first drop. An Identity operand collapses to the other operand.
func Compose(first, second Function) Function {
	switch {
	case isIdentity(first):
		return second
	case isIdentity(second):
		return first
	}
	return compose{first: first, second: second}
}

func (c compose) Apply(s State) (State, bool) {
	s, ok := c.first.Apply(s)
	if !ok {
		return s, false
	}
	return c.second.Apply(s)
}

func (c compose) Variants() Variant { return c.first.Variants() | c.second.Variants() }

// String is associativity-agnostic so that (f∘g)∘h equals f∘(g∘h)
func (c compose) String() string {
	return strings.Join(c.flatten(nil), " ; ")
}

func (c compose) flatten(acc []string) []string {
	for _, f := range []Function{c.first, c.second} {
		if inner, ok := f.(compose); ok {
			acc = inner.flatten(acc)
		} else {
			acc = append(acc, f.String())
		}
	}
	return acc
}

func (compose) sealed() {}

type filterByOuterTag struct {
	allowed       domain.IntegerSpace
	allowUntagged bool
}

// FilterByOuterTag passes frames whose outer tag is in allowed, and untagged
// frames when allowUntagged is set.
func FilterByOuterTag(allowed domain.IntegerSpace, allowUntagged bool) Function {
	if allowUntagged && allowed.Equal(domain.AllIntegers) {
		return Identity()
	}
	return filterByOuterTag{allowed: allowed, allowUntagged: allowUntagged}
}

func (f filterByOuterTag) Apply(s State) (State, bool) {
	if tag, ok := s.OuterTag(); ok {
		return s, f.allowed.Contains(tag)
	}
	return s, f.allowUntagged
}

func (filterByOuterTag) Variants() Variant { return VariantFilterByOuterTag }

func (f filterByOuterTag) String() string {
	return fmt.Sprintf("FilterByOuterTag(allowed=[%s], untagged=%t)", f.allowed, f.allowUntagged)
}

func (filterByOuterTag) sealed() {}

type filterByVlanID struct {
	allowed domain.IntegerSpace
}

// FilterByVlanID passes frames whose VLAN id is in allowed. The state must
// carry a VLAN id.
func FilterByVlanID(allowed domain.IntegerSpace) Function {
	if allowed.Equal(domain.AllIntegers) {
		return Identity()
	}
	return filterByVlanID{allowed: allowed}
}

func (f filterByVlanID) Apply(s State) (State, bool) {
	vlan, ok := s.VlanID()
	invariant(ok, "FilterByVlanId applied to %s without a VLAN id", s)
	return s, ok && f.allowed.Contains(vlan)
}

func (filterByVlanID) Variants() Variant { return VariantFilterByVlanID }

func (f filterByVlanID) String() string {
	return fmt.Sprintf("FilterByVlanId(allowed=[%s])", f.allowed)
}

func (filterByVlanID) sealed() {}

type assignVlanFromOuterTag struct {
	native    uint32
	hasNative bool
}

// AssignVlanFromOuterTag moves the outer tag into the VLAN id. Untagged frames
// are assigned the native VLAN, or dropped when nativeVlan is nil.
func AssignVlanFromOuterTag(nativeVlan *uint32) Function {
	if nativeVlan == nil {
		return assignVlanFromOuterTag{}
	}
	return assignVlanFromOuterTag{native: *nativeVlan, hasNative: true}
}

func (f assignVlanFromOuterTag) Apply(s State) (State, bool) {
	if tag, ok := s.OuterTag(); ok {
		return s.WithoutOuterTag().WithVlanID(tag), true
	}
	if !f.hasNative {
		return s, false
	}
	return s.WithVlanID(f.native), true
}

func (assignVlanFromOuterTag) Variants() Variant { return VariantAssignVlanFromOuterTag }

func (f assignVlanFromOuterTag) String() string {
	if !f.hasNative {
		return "AssignVlanFromOuterTag(native=none)"
	}
	return fmt.Sprintf("AssignVlanFromOuterTag(native=%d)", f.native)
}

func (assignVlanFromOuterTag) sealed() {}

type clearVlanID struct{}

// ClearVlanID removes the VLAN id, if any
func ClearVlanID() Function { return clearVlanID{} }

func (clearVlanID) Apply(s State) (State, bool) { return s.WithoutVlanID(), true }
func (clearVlanID) Variants() Variant           { return VariantClearVlanID }
func (clearVlanID) String() string              { return "ClearVlanId" }
func (clearVlanID) sealed()                     {}

type popTag struct {
	count int
}

// PopTag removes count outer tags. Only single-tag frames are modelled, so count
// must be 0 or 1 and the frame must carry at least count tags.
func PopTag(count int) Function {
	mustWire(count == 0 || count == 1, "PopTag(%d): only 0 or 1 tags are modelled", count)
	if count == 0 {
		return Identity()
	}
	return popTag{count: count}
}

func (f popTag) Apply(s State) (State, bool) {
	_, tagged := s.OuterTag()
	invariant(tagged, "PopTag(%d) applied to untagged %s", f.count, s)
	return s.WithoutOuterTag(), true
}

func (popTag) Variants() Variant { return VariantPopTag }

func (f popTag) String() string { return fmt.Sprintf("PopTag(%d)", f.count) }

func (popTag) sealed() {}

type pushTag struct {
	tag uint32
}

// PushTag adds an outer tag. The frame must be untagged.
func PushTag(tag uint32) Function {
	return pushTag{tag: tag}
}

func (f pushTag) Apply(s State) (State, bool) {
	_, tagged := s.OuterTag()
	invariant(!tagged, "PushTag(%d) applied to already tagged %s", f.tag, s)
	return s.WithOuterTag(f.tag), true
}

func (pushTag) Variants() Variant { return VariantPushTag }

func (f pushTag) String() string { return fmt.Sprintf("PushTag(%d)", f.tag) }

func (pushTag) sealed() {}

type pushVlanID struct {
	except    uint32
	hasExcept bool
}

// PushVlanID copies the VLAN id into the outer tag, except when it equals
// exceptVlan (the native VLAN, sent untagged). The frame must carry a VLAN id
// and no outer tag.
func PushVlanID(exceptVlan *uint32) Function {
	if exceptVlan == nil {
		return pushVlanID{}
	}
	return pushVlanID{except: *exceptVlan, hasExcept: true}
}

func (f pushVlanID) Apply(s State) (State, bool) {
	vlan, hasVlan := s.VlanID()
	_, tagged := s.OuterTag()
	invariant(hasVlan, "PushVlanId applied to %s without a VLAN id", s)
	invariant(!tagged, "PushVlanId applied to already tagged %s", s)
	if f.hasExcept && vlan == f.except {
		return s, true
	}
	return s.WithOuterTag(vlan), true
}

func (pushVlanID) Variants() Variant { return VariantPushVlanID }

func (f pushVlanID) String() string {
	if !f.hasExcept {
		return "PushVlanId(except=none)"
	}
	return fmt.Sprintf("PushVlanId(except=%d)", f.except)
}

func (pushVlanID) sealed() {}

type setVlanID struct {
	vlan uint32
}

// SetVlanID assigns a VLAN id. The frame must not already carry one.
func SetVlanID(vlan uint32) Function {
	return setVlanID{vlan: vlan}
}

func (f setVlanID) Apply(s State) (State, bool) {
	_, hasVlan := s.VlanID()
	invariant(!hasVlan, "SetVlanId(%d) applied to %s which already has a VLAN id", f.vlan, s)
	return s.WithVlanID(f.vlan), true
}

func (setVlanID) Variants() Variant { return VariantSetVlanID }

func (f setVlanID) String() string { return fmt.Sprintf("SetVlanId(%d)", f.vlan) }

func (setVlanID) sealed() {}

type translateVlan struct {
	mapping map[uint32]uint32
}

// TranslateVlan rewrites the VLAN id through mapping; unmapped ids pass
// unchanged. The frame must carry a VLAN id.
func TranslateVlan(mapping map[uint32]uint32) Function {
	if len(mapping) == 0 {
		return Identity()
	}
	return translateVlan{mapping: maps.Clone(mapping)}
}

func (f translateVlan) Apply(s State) (State, bool) {
	vlan, ok := s.VlanID()
	invariant(ok, "TranslateVlan applied to %s without a VLAN id", s)
	if to, found := f.mapping[vlan]; found {
		return s.WithVlanID(to), true
	}
	return s, true
}

func (translateVlan) Variants() Variant { return VariantTranslateVlan }

func (f translateVlan) String() string {
	keys := slices.Sorted(maps.Keys(f.mapping))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d->%d", k, f.mapping[k])
	}
	return "TranslateVlan(" + strings.Join(parts, ",") + ")"
}

func (translateVlan) sealed() {}
