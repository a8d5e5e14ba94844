// Command msneuron inspects segmented neurons from a calcium-imaging
// session: label summaries, centroid distances, nearest neighbours and
// footprint renders.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
