package plan

import (
	"reflect"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/common"
	"struct-mapper/internal/mapping"
	"struct-mapper/internal/match"
	"struct-mapper/options"
	"struct-mapper/primitive"
)

// MappingPlan is the compiled description of one keyed mapping. It is immutable once
// published and shared by every call with the same key.
type MappingPlan struct {
	Key  Key
	Root *QualifiedMember
	// Value produces the root target: a pointer to the target type for complex targets,
	// the target type itself otherwise.
	Value *ValuePlan
	// Unmapped lists target members no source was found for.
	Unmapped []Unmapped
	// Repeats are the repeat references of the plan, in first-use order.
	Repeats []*RepeatRef

	Converter *primitive.Converter
	Settings  options.Settings
}

// Unmapped is a target member left without a source.
type Unmapped struct {
	Path        string
	Reason      string
	Suggestions []string
}

// Strategy is how a value plan produces its target value.
type Strategy int

const (
	StrategyNone         Strategy = iota
	StrategyAssign                // value assigned as is, pointer levels adapted
	StrategyConvert               // simple-type conversion
	StrategyCast                  // user converter func
	StrategyObject                // complex target populated member by member
	StrategyRepeat                // delegated to the shared plan of a recursive type pair
	StrategyShortCircuit          // recursion stopped, the zero value is assigned
	StrategyEnumerable            // collection populated element by element
	StrategyDictionary            // dictionary to dictionary
	StrategyFlatten               // complex source written into a string-keyed dictionary
	StrategyIndexed               // string-keyed dictionary read into a collection
	StrategyDynamic               // resolved on the runtime type of an interface source
)

// String returns a human-readable representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyAssign:
		return "assign"
	case StrategyConvert:
		return "convert"
	case StrategyCast:
		return "cast"
	case StrategyObject:
		return "object"
	case StrategyRepeat:
		return "repeat"
	case StrategyShortCircuit:
		return "short-circuit"
	case StrategyEnumerable:
		return "enumerable"
	case StrategyDictionary:
		return "dictionary"
	case StrategyFlatten:
		return "flatten"
	case StrategyIndexed:
		return "indexed"
	case StrategyDynamic:
		return "dynamic"
	default:
		return common.UnknownStr
	}
}

// ValuePlan turns one source value into one target value.
type ValuePlan struct {
	Strategy   Strategy
	SourceType reflect.Type // declared source type
	TargetType reflect.Type // declared target type, the value produced has exactly this type

	Object     *ObjectPlan
	Repeat     *RepeatRef
	Enumerable *EnumerablePlan
	Dictionary *DictionaryPlan
	Flatten    *FlattenPlan
	Indexed    *IndexedPlan
}

// IsScalar reports whether the value replaces the target as a whole instead of
// populating an existing instance.
func (v *ValuePlan) IsScalar() bool {
	switch v.Strategy {
	case StrategyAssign, StrategyConvert, StrategyCast, StrategyShortCircuit:
		return true
	case StrategyDynamic:
		return analyze.Classify(v.TargetType) == analyze.TypeKindSimple
	default:
		return false
	}
}

// ObjectPlan populates one complex target from one source object.
type ObjectPlan struct {
	Member     *QualifiedMember
	SourceType reflect.Type // base source type; a string-keyed map for keyed sources
	TargetType reflect.Type // base concrete target type

	// Prefix is the flattened name prefix consumed by enclosing members.
	Prefix string
	// SameSource objects read the enclosing object's source (unflattening).
	SameSource bool
	// Keyed objects read members from dictionary entries.
	Keyed     bool
	Separator string

	Construction *Construction
	Members      []*MemberPlan
	Before       []mapping.Callback
	After        []mapping.Callback
	// Track maps a source instance met twice in one call to the same target instance.
	Track bool
}

// ConstructionKind says how target instances are obtained.
type ConstructionKind int

const (
	// ConstructNone means no instance can be built; only existing targets are populated.
	ConstructNone ConstructionKind = iota
	ConstructZero
	ConstructConstructor
	ConstructFactory
)

// String returns a human-readable representation of the ConstructionKind.
func (k ConstructionKind) String() string {
	switch k {
	case ConstructNone:
		return "none"
	case ConstructZero:
		return "zero"
	case ConstructConstructor:
		return "constructor"
	case ConstructFactory:
		return "factory"
	default:
		return common.UnknownStr
	}
}

// Construction is the chosen way to create a target instance.
type Construction struct {
	Kind        ConstructionKind
	Factory     mapping.Factory
	Constructor *analyze.Constructor
	// Args are the constructor parameters, in parameter order.
	Args []*MemberPlan
}

// MemberPlan populates one target member.
type MemberPlan struct {
	Target *QualifiedMember
	// Sources are tried in order until one yields a value.
	Sources  []*DataSource
	Ignored  bool
	IgnoreIf []mapping.Condition
	// InPlace members are read-only and populated through their current value.
	InPlace bool
	// Consumed members were set by the constructor and are not assigned again.
	Consumed bool

	miss *Unmapped
}

// Mapped reports whether the member is accounted for.
func (m *MemberPlan) Mapped() bool {
	return m.Ignored || m.Consumed || len(m.Sources) > 0
}

// SourceKind says where a data source reads from.
type SourceKind int

const (
	SourceMember   SourceKind = iota // member path of a frame source; empty path is the frame source
	SourceEntry                      // dictionary entry by key
	SourceEntries                    // dictionary entries below a key prefix
	SourceFunc                       // configured value func
	SourceConstant                   // configured constant
)

// String returns a human-readable representation of the SourceKind.
func (k SourceKind) String() string {
	switch k {
	case SourceMember:
		return "member"
	case SourceEntry:
		return "entry"
	case SourceEntries:
		return "entries"
	case SourceFunc:
		return "func"
	case SourceConstant:
		return "constant"
	default:
		return common.UnknownStr
	}
}

// DataSource is one way to obtain a member value.
type DataSource struct {
	Kind       SourceKind
	Configured bool
	Name       string
	// Description is the source path relative to the plan root source, "Customer.Email".
	Description string
	Condition   mapping.Condition
	Order       int
	After       []string

	// FrameUp selects the enclosing object the source is read from; 0 is the member's own.
	FrameUp  int
	Path     []Step
	Key      string
	Func     mapping.ValueFunc
	Constant reflect.Value
	Match    match.MatchKind

	// Value converts what was read into the member value.
	Value *ValuePlan
}

// Step reads one member, then optionally one fixed element.
type Step struct {
	Member *analyze.MemberInfo
	Index  int // mapping.NoIndex when no element is taken
}

// ReadType is the static type of the value the source reads.
func (d *DataSource) ReadType(frameSource reflect.Type) reflect.Type {
	switch d.Kind {
	case SourceMember:
		if len(d.Path) == 0 {
			return frameSource
		}

		last := d.Path[len(d.Path)-1]
		if last.Index == mapping.NoIndex {
			return last.Member.Type
		}

		if t := analyze.Deref(last.Member.Type); t != nil {
			switch t.Kind() {
			case reflect.Slice, reflect.Array:
				return t.Elem()
			}
		}

		return nil
	case SourceFunc:
		return anyType
	case SourceConstant:
		if !d.Constant.IsValid() {
			return anyType
		}

		return d.Constant.Type()
	case SourceEntry:
		if t := analyze.Deref(frameSource); t != nil && t.Kind() == reflect.Map {
			return t.Elem()
		}

		return nil
	default:
		return frameSource
	}
}

var anyType = reflect.TypeFor[any]()

// RepeatRef delegates a recursive occurrence to the plan of its type pair.
type RepeatRef struct {
	Key Key
	// Plan is set when the reference points back at a plan of the same compile session.
	Plan *MappingPlan
	// MaxDepth bounds nested executions at runtime; zero is unbounded.
	MaxDepth int
}

// LoopKind is how source collections are iterated.
type LoopKind int

const (
	LoopIndexed    LoopKind = iota // len and index access
	LoopEnumerator                 // range over a set or a sequence
)

// String returns a human-readable representation of the LoopKind.
func (k LoopKind) String() string {
	if k == LoopEnumerator {
		return "enumerator"
	}

	return "indexed"
}

// EnumerablePlan maps a collection element by element.
type EnumerablePlan struct {
	Source     *analyze.EnumerableInfo
	Target     *analyze.EnumerableInfo
	TargetType reflect.Type // base target collection type
	Loop       LoopKind
	Element    *ValuePlan
	// Identity matches source and existing target elements in Merge and Overwrite.
	Identity *Identity
}

// Identity pairs source elements with existing target elements by key.
type Identity struct {
	// Target is the identity member of the target element type.
	Target *analyze.MemberInfo
	// Source reads the key from a source element.
	Source []Step
	// Key converts the source key to the target key type.
	Key *ValuePlan
}

// DictionaryPlan maps a dictionary entry by entry.
type DictionaryPlan struct {
	TargetType reflect.Type // base target map type
	Key        *ValuePlan
	Value      *ValuePlan
}

// FlattenPlan writes the members of a source value into a string-keyed dictionary.
type FlattenPlan struct {
	SourceType reflect.Type // base source type at this level
	ValueType  reflect.Type // dictionary value type
	KeyType    reflect.Type
	Separator  string
	Fields     []*FlattenField
	// Element is set when the source at this level is a collection; keys get "[i]".
	Element *FlattenField
}

// FlattenField is one key, or one key prefix, of a flattened dictionary.
type FlattenField struct {
	Key    string
	Target *QualifiedMember
	Read   *analyze.MemberInfo // nil for collection elements
	Leaf   *ValuePlan          // converts a simple value to the dictionary value type
	Nested *FlattenPlan
}

// IndexedPlan reads "[i]"-keyed dictionary entries into a collection.
type IndexedPlan struct {
	Target     *analyze.EnumerableInfo
	TargetType reflect.Type // base target collection type
	Separator  string
	// Element is an Object plan over keyed entries for complex elements, or converts
	// a single entry value otherwise.
	Element *ValuePlan
	Complex bool
}
