// Package device probes the host the recognizer trains on
package device

import "runtime"

import "github.com/klauspost/cpuid/v2"

// Info describes the compute resources visible to the trainer.
type Info struct {
	Brand    string
	Physical int
	Logical  int
	AVX2     bool
	AVX512   bool
	FMA      bool
	GPUs     []string
}

var threads int

func init() {
	threads = cpuid.CPU.PhysicalCores
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
}

// Threads reports the number of goroutines per parallel section. Can't return 0.
func Threads() int {
	if threads <= 0 {
		return 1
	}
	return threads
}

// SetThreads overrides the thread budget, n <= 0 restores the detected value.
func SetThreads(n int) {
	if n <= 0 {
		n = cpuid.CPU.PhysicalCores
		if n <= 0 {
			n = runtime.NumCPU()
		}
	}
	threads = n
}

// Probe gathers the CPU features and any CUDA devices.
func Probe() Info {
	info := Info{
		Brand:    cpuid.CPU.BrandName,
		Physical: cpuid.CPU.PhysicalCores,
		Logical:  cpuid.CPU.LogicalCores,
		AVX2:     cpuid.CPU.Supports(cpuid.AVX2),
		AVX512:   cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
		FMA:      cpuid.CPU.Supports(cpuid.FMA3),
	}
	if info.Logical <= 0 {
		info.Logical = runtime.NumCPU()
	}
	info.GPUs = gpus()
	return info
}
