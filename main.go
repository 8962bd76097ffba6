package main

import "github.com/josephlewis42/ublush/cmd"

func main() {
	cmd.Execute()
}
