package main

import "horizonx-sampler/internal/cli"

func main() {
	cli.Execute()
}
