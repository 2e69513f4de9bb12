// Public domain.

package main

import "github.com/radioholo/oof/internal/oofprog"

func main() {
	oofprog.Main()
}
