package main

import "github.com/dath2006/cache-insights/cmd/cacheinsights/cmd"

func main() {
	cmd.Execute()
}
