package main

import (
	"os"

	leadlinecmder "github.com/papercomputeco/leadline/cmd/leadline"
)

func main() {
	cmd := leadlinecmder.NewLeadlineCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
