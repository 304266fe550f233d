// Package noise isolates measurement noise from a single oracle call by
// warming up a target before measurement and, optionally, replicating a
// test several times and reducing the replications to one representative
// result via the median.
package noise
