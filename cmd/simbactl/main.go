// Command simbactl is a demo/integration CLI around package client: it
// dials a real broker over TCP (optionally TLS), drives the five
// synchronous operations, prints delivered publishes, and keeps the
// session alive with a local ping loop — the core itself stays unaware
// of wall time and never schedules its own PINGREQ.
package main

import (
	"fmt"
	"os"

	"github.com/simonlbn/simba/cmd/simbactl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "simbactl:", err)
		os.Exit(1)
	}
}
