// Command exti-vet reports interrupt bring-up calls made out of order.
//
//	exti-vet ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"omibyte.io/exti/analysis/initorder"
)

func main() {
	singlechecker.Main(initorder.Analyzer)
}
