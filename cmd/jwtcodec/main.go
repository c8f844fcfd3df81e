// Command jwtcodec encodes, decodes and inspects JWTs from the command line
// and serves the same operations over HTTP.
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
