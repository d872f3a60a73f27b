// Package mapping holds the mapping configuration: the store every registration lands
// in, the fluent builder on top of it, and the mapping file schema with its loaders.
//
// Configuration is a set of entries keyed by target type and member path, each
// optionally restricted to a source type and to some rule sets. Plans are compiled from
// the store; every registration moves the store fingerprint so stale plans are never
// reused.
//
// # Key capabilities
//
//   - Data sources per target member: a source path, a value func or a constant,
//     optionally conditional, ordered by Order, registration and After names
//   - Ignored members, with or without a condition
//   - Object factories, before/after callbacks and derived (concrete) targets
//   - Element identity for merged collections and recursion limits per type
//   - Per pair strictness and dictionary key separators
//   - Validate reports contradictions in one ConfigurationError
//
// # Mapping files
//
// Files are YAML, TOML or JSON with comments (JWCC). The format follows the extension.
//
//	version: "1"
//	settings:
//	  max_recursion_depth: 8
//	types:
//	  - type: warehouse.OrderItem
//	    identity: ProductID
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    rule_sets: [create_new, merge]
//	    # 1:1 shorthand, source path to target path (highest priority)
//	    121:
//	      ShippingAddressCity: ShippingAddress.City
//	    fields:
//	      - target: Currency
//	        constant: EUR
//	      - target: Notes
//	        transform: JoinNotes
//	        condition: HasNotes
//	    ignore: Tags
//	    # pinned convention matches (lowest priority)
//	    auto:
//	      - target: Status
//	        source: Status
//
// Function names (transform, condition, factory, before, after) resolve through a
// TransformRegistry and type names through the registered types of the model.
//
// # Priority Order
//
// Sources registered for the same member are tried in order until one yields a value.
// File entries register in this order:
//
//  1. 121 mappings
//  2. fields
//  3. auto
//
// Ignores win over every source of the member.
package mapping
