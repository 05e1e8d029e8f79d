// Package main provides a minimal HTTP healthcheck binary for container
// probes, where no shell or curl is available in the image.
// It exits 0 when the target URL answers 2xx, and 1 otherwise.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	url := flag.Arg(0)
	if url == "" {
		url = "http://localhost:8080/readyz"
	}

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Fprintf(os.Stderr, "healthcheck failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}
}
