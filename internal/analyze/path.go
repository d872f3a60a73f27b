package analyze

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TypePath builds a readable path string for a member.
// Examples:
//   - "Order" for the mapping root
//   - "Order.Items" for a nested member
//   - "Order.Items[]" for any element of an enumerable
//   - "Order.Items[2].ProductID" for a member of one element
//   - "Order.Tags[color]" for a dictionary entry
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a member name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slice appends an element indicator "[]" to the path.
func (p *TypePath) Slice() *TypePath {
	return p.suffix("[]")
}

// Index appends a concrete element index to the path.
func (p *TypePath) Index(i int) *TypePath {
	return p.suffix("[" + strconv.Itoa(i) + "]")
}

// Key appends a dictionary key to the path.
func (p *TypePath) Key(key any) *TypePath {
	return p.suffix(fmt.Sprintf("[%v]", key))
}

func (p *TypePath) suffix(s string) *TypePath {
	if len(p.parts) == 0 {
		return &TypePath{parts: []string{s}}
	}

	newParts := make([]string, len(p.parts))
	copy(newParts, p.parts)
	newParts[len(newParts)-1] += s

	return &TypePath{parts: newParts}
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// TypeString returns a short readable name for t: "store.Order", "[]*warehouse.OrderItem".
func TypeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.Name() != "" {
		return IDOf(t).Short()
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + TypeString(t.Elem())
	case reflect.Slice:
		return "[]" + TypeString(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeString(t.Elem())
	case reflect.Map:
		return "map[" + TypeString(t.Key()) + "]" + TypeString(t.Elem())
	case reflect.Struct:
		return "struct{...}"
	default:
		return t.String()
	}
}

// FieldPaths recursively lists member paths below root, relative to it ("Address.Line1", "Items[].Name").
func FieldPaths(model TypeModel, root reflect.Type, maxDepth int) map[string]*MemberInfo {
	result := make(map[string]*MemberInfo)
	walkFieldPaths(model, model.TypeOf(root), "", result, 0, maxDepth)

	return result
}

func walkFieldPaths(model TypeModel, t *TypeInfo, prefix string, result map[string]*MemberInfo, depth, maxDepth int) {
	if t == nil || depth > maxDepth || t.Kind != TypeKindComplex {
		return
	}

	for _, member := range t.Members {
		path := member.Name
		if prefix != "" {
			path = prefix + "." + member.Name
		}

		result[path] = member

		child := model.TypeOf(member.Type)
		switch child.Kind {
		case TypeKindComplex:
			walkFieldPaths(model, child, path, result, depth+1, maxDepth)
		case TypeKindEnumerable:
			walkFieldPaths(model, model.TypeOf(child.Enumerable.Elem), path+"[]", result, depth+1, maxDepth)
		}
	}
}
