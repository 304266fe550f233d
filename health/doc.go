// Package health provides reusable health check functions for evaluation
// backends.
//
// This package offers standardized ways to verify a backend's binary
// dependency is present and meets a minimum version.
//
// # Health Check Functions
//
//   - BinaryCheck: Verify a binary exists in PATH
//   - BinaryVersionCheck: Verify a binary meets minimum version requirements
//
// # Usage Example
//
//	import "github.com/One-Up-Dev/ai-process-tester-apt/health"
//
//	status := health.BinaryCheck("python3")
//	if status.IsUnhealthy() {
//	    log.Fatal("python3 is required but not installed")
//	}
//
//	status = health.BinaryVersionCheck("python3", "3.10.0", "--version")
//	if status.IsUnhealthy() {
//	    log.Fatal("python3 3.10.0 or higher is required")
//	}
//
// # Context and Timeouts
//
// BinaryVersionCheck has a built-in 5-second timeout when executing
// binaries to check their version.
//
// # Version Comparison
//
// BinaryVersionCheck performs basic semantic version comparison.
// It supports common version formats like:
//
//   - "1.2.3"
//   - "v2.4.6"
//   - "nmap version 7.80"
//   - "go version go1.21.5 linux/amd64"
//
// Version comparison is done numerically on each segment (major.minor.patch).
package health
