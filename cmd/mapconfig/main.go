// Command mapconfig checks and normalizes struct-mapper mapping files.
//
//	mapconfig check orders.yaml
//	mapconfig normalize orders.jsonc -o orders.yaml
package main

func main() {
	Execute()
}
