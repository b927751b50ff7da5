//go:build !linux

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "execshim: the preload library only builds on linux")
	os.Exit(1)
}
