// Package main provides the entry point for the minispider CLI.
//
// minispider is a breadth-first web crawler. It starts from a list of seed
// URLs, follows links up to a maximum depth with a pool of workers, and
// saves every page whose URL matches a target pattern.
//
// Usage:
//
//	minispider crawl -c spider.yaml
//	minispider history
//	minispider report <run-id>
//
// See --help for all available options.
package main

// main is the entry point for minispider.
func main() {
	Execute()
}
