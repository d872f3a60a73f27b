package node_test

import (
	"fmt"
	"reflect"

	"struct-mapper/internal/plan"
	"struct-mapper/node"
	"struct-mapper/options"
)

func ExampleDealer() {
	var d node.Dealer

	intToString := plan.NewKey(reflect.TypeFor[int](), reflect.TypeFor[string](), options.CreateNew, 0)
	d.Needs(intToString)
	key, ok := d.Next()
	fmt.Println("int & string:", key, ok)

	_, ok = d.Next()
	fmt.Println("empty:", ok)

	d.Needs(intToString)
	_, ok = d.Next()
	fmt.Println("no duplicates:", ok)

	d.Needs(plan.NewKey(reflect.TypeFor[int](), reflect.TypeFor[int](), options.Merge, 0))
	d.Needs(plan.NewKey(reflect.TypeFor[string](), reflect.TypeFor[string](), options.Merge, 0))
	key, ok = d.Next()
	fmt.Println("first needed:", key, ok)

	key, ok = d.Next()
	fmt.Println("then:", key, ok)

	_, ok = d.Next()
	fmt.Println("no more keys:", ok)

	// Output:
	// int & string: int -> string (CreateNew) true
	// empty: false
	// no duplicates: false
	// first needed: int -> int (Merge) true
	// then: string -> string (Merge) true
	// no more keys: false
}
