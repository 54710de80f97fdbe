package main

import "github.com/mosaicboards/mosaic/cmd"

func main() {
	cmd.Execute()
}
