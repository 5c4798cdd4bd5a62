// Package parallel runs independent per-sample work on a bounded number of goroutines.
package parallel
