package main

import "github.com/vipteryx/centretracker/internal/cli"

func main() {
	cli.Execute()
}
