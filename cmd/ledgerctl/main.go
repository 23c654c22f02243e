package main

import "provenance-ledger/cmd/ledgerctl/cmd"

func main() {
	cmd.Execute()
}
