// Command eqvet runs the equality checks as a go vet style analyzer:
//
//	go vet -vettool=$(which eqvet) ./...
//	eqvet -fix ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"eqlint/internal/eqanalysis"
)

func main() {
	singlechecker.Main(eqanalysis.Analyzer)
}
