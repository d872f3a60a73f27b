// Package analyze provides the type and member model the mapping engine works on.
//
// A TypeModel describes a type's gettable and settable members (struct fields,
// getter/setter method properties and constructor parameters) and classifies each
// type as simple, complex, enumerable, dictionary or interface. ReflectModel is the
// runtime implementation: it introspects lazily on first reference and keeps the
// immutable result for its lifetime.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: classification, members, collection descriptors
//   - MemberInfo: name, declared type, member kind and read/write capability
//   - Constructor: a registered construction function and its parameters
package analyze
