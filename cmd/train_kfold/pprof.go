package main

import "os"
import "os/signal"
import "runtime/pprof"
import "syscall"

import "k8s.io/klog/v2"

// profile writes a CPU profile to path until stop is called or the program is interrupted.
func profile(path string) (stop func()) {
	f, err := os.Create(path)
	if err != nil {
		klog.ErrorS(err, "Cannot create profile", "path", path)
		return func() {}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		klog.ErrorS(err, "Cannot start profile", "path", path)
		f.Close()
		return func() {}
	}
	stop = func() {
		pprof.StopCPUProfile()
		f.Close()
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		stop()
		klog.Flush()
		os.Exit(130)
	}()
	return stop
}
