package util

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// PhysicalCores returns the number of CPUs visible to the process. The
// pack's SMT-aware encoder sizing logic doesn't have a portable way to
// distinguish physical from logical cores outside of parsing
// /proc/cpuinfo, so framecast's worker sizing only needs
// runtime.NumCPU() — Parts are one Chromium tab each, not one SVT-AV1
// thread each, so the teacher's fine SMT distinction doesn't carry over.
func PhysicalCores() int {
	return runtime.NumCPU()
}

// LogicalCores returns the number of logical CPUs visible to the process.
func LogicalCores() int {
	return runtime.NumCPU()
}

// AvailableMemoryBytes returns the amount of free system memory in bytes,
// or 0 if it cannot be determined.
func AvailableMemoryBytes() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Freeram) * uint64(info.Unit)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileSize returns the size in bytes of the file at path, or 0 if it
// cannot be stat'd.
func GetFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// EnsureDirectory creates path (and any missing parents) if it doesn't
// already exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}

// FormatBytesReadable renders a byte count as a human-friendly string
// (e.g. "4.2 MB").
func FormatBytesReadable(bytes int64) string {
	const unitStep = 1024.0
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	i := 0
	for size >= unitStep && i < len(units)-1 {
		size /= unitStep
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", bytes, units[i])
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

// FormatDuration renders a time.Duration as "Hh Mm Ss", dropping leading
// zero units.
func FormatDuration(d time.Duration) string {
	return FormatDurationFromSecs(d.Seconds())
}

// FormatDurationFromSecs renders a duration given in seconds as
// "Hh Mm Ss", dropping leading zero units.
func FormatDurationFromSecs(totalSecs float64) string {
	secs := int64(totalSecs)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// CalculateSizeReduction returns the percentage reduction from original
// to reduced, 0 when original is 0.
func CalculateSizeReduction(original, reduced int64) float64 {
	if original == 0 {
		return 0
	}
	return (1 - float64(reduced)/float64(original)) * 100
}
