package main

import "github.com/eventhub/eventhub-go/cmd/api/cmd"

func main() {
	cmd.Execute()
}
