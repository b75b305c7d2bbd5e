// Command hookswitch converts tabular data between XLSX and CSV, streaming
// row-by-row so that files far larger than available memory can be
// converted in bounded space.
package main

import "github.com/DeltaShift/hookswitch/cmd"

func main() {
	cmd.Execute()
}
