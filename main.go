package main

import "github.com/theopenlane/consentaudit/cmd"

func main() {
	cmd.Execute()
}
