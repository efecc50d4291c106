package main

import "github.com/Alijeyrad/jyotish_backend/cmd"

func main() {
	cmd.Execute()
}
