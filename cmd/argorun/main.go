package main

import "github.com/deploykit/argorun/cmd/argorun/internal"

func main() {
	internal.Execute()
}
