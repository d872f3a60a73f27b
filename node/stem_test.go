package node_test

import (
	"fmt"

	"struct-mapper/node"
)

func ExampleStem() {
	st := node.NewStem("target")
	fmt.Println(st.Next(), st.Next(), st.Next())

	st = node.NewStem("item", "item2")
	fmt.Println(st.Next(), st.Next(), st.Next())

	// Output:
	// target1 target2 target3
	// item1 item3 item4
}
