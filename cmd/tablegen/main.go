// Command tablegen precomputes the route table served by the routing backend
// and inspects existing table files.
//
// Usage:
//
//	tablegen build --out routes.msgpack [--dataset campus.json]
//	tablegen inspect routes.msgpack
package main

import (
	"fmt"
	"os"

	"github.com/ExclusiveDisjunction/sse-back/cmd/tablegen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
