// hpcplot renders charts from the logs of the HPC assignment benchmarks.
package main

import "github.com/relab/hpcplot/internal/cli"

func main() {
	cli.Execute()
}
