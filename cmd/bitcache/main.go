package main

import "github.com/aweris/bitcache/cmd/bitcache/cmd"

func main() {
	cmd.Execute()
}
