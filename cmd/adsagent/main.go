// Command adsagent is a terminal client for the Google Ads Assistant.
package main

import "github.com/diogo/adsagent/internal/commands"

func main() {
	commands.Execute()
}
