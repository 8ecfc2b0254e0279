// Command tectonic enumerates every valid completed grid of a
// Tectonic-style puzzle base and persists the enumeration to a segmented
// binary container, per design notes §6.5.
package main

import "github.com/rybkr/tectonic/cmd"

func main() {
	cmd.Execute()
}
