package main

import "github.com/ogulcanaydogan/AI-Usage-Tracker/internal/cli"

func main() {
	cli.Execute()
}
