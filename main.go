package main

import (
	"os"
)

func main() {
	driver := newDriver()
	if err := driver.Drive(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
