package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
	"github.com/tebeka/atexit"
)

// runWithTimeout runs work in the background and aborts the process
// if it hasn't returned within timeout (zero means no limit). On
// abort it samples this process's own RSS via gopsutil so the abort
// log line reports memory at the time of the timeout, then exits
// through atexit so any registered flush hooks still run.
func runWithTimeout(timeout time.Duration, work func()) {
	if timeout <= 0 {
		work()
		return
	}

	done := make(chan struct{})
	go func() {
		work()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		slog.Error("analysis timed out", "timeout", timeout, "rss_bytes", sampleRSS())
		atexit.Exit(2)
	}
}

func sampleRSS() int64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return -1
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return -1
	}
	return int64(info.RSS)
}
