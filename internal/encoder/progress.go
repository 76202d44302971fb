package encoder

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"
)

// watchProgress drains both pipes concurrently: stderr carries the
// "Duration: HH:MM:SS.cc" banner (used only as a duration fallback when
// probeDuration failed), stdout carries "-progress pipe:1" key=value
// lines, notably out_time_ms. Both must be drained or ffmpeg blocks on a
// full pipe buffer.
func watchProgress(stderr, stdout io.Reader, totalSeconds float64, onProgress ProgressFunc, done chan<- struct{}) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	duration := totalSeconds

	wg.Add(1)
	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			if d, ok := parseDurationBanner(sc.Text()); ok {
				mu.Lock()
				if duration == 0 {
					duration = d
				}
				mu.Unlock()
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			seconds, ok := parseOutTimeMs(sc.Text())
			if !ok {
				continue
			}
			if onProgress == nil {
				continue
			}
			mu.Lock()
			d := duration
			mu.Unlock()
			if d <= 0 {
				continue
			}
			pct := seconds / d * 100
			if pct > 99 {
				pct = 99
			}
			if pct < 0 {
				pct = 0
			}
			onProgress(pct)
		}
	}()

	wg.Wait()
	close(done)
}

// parseDurationBanner extracts seconds from a line like:
// "  Duration: 00:03:24.51, start: 0.000000, bitrate: 1234 kb/s"
func parseDurationBanner(line string) (float64, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "Duration:") {
		return 0, false
	}
	rest := strings.TrimPrefix(line, "Duration:")
	rest = strings.TrimSpace(rest)
	end := strings.Index(rest, ",")
	if end == -1 {
		return 0, false
	}
	return parseTimecode(strings.TrimSpace(rest[:end]))
}

// parseTimecode parses "HH:MM:SS.cc" into total seconds.
func parseTimecode(tc string) (float64, bool) {
	parts := strings.Split(tc, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.ParseFloat(parts[0], 64)
	m, err2 := strconv.ParseFloat(parts[1], 64)
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return h*3600 + m*60 + s, true
}

// parseOutTimeMs extracts seconds from an ffmpeg "-progress" line of the
// form "out_time_ms=1234567" (microseconds, despite the name).
func parseOutTimeMs(line string) (float64, bool) {
	const prefix = "out_time_ms="
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimPrefix(line, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(us) / 1_000_000, true
}
