package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reads the playback duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe shells out to ffprobe.
type FFProbe struct {
	Timeout time.Duration
}

// Duration runs ffprobe on path and parses its JSON report.
func (p FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeDuration(out)
}

type probeReport struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

var errNoDuration = errors.New("probe report has no duration")

// parseProbeDuration prefers the container duration and falls back to the
// first video stream.
func parseProbeDuration(report string) (float64, error) {
	var r probeReport
	if err := json.Unmarshal([]byte(report), &r); err != nil {
		return 0, fmt.Errorf("decode probe report: %w", err)
	}
	if d, err := strconv.ParseFloat(r.Format.Duration, 64); err == nil && d >= 0 {
		return d, nil
	}
	for _, s := range r.Streams {
		if s.CodecType != "video" {
			continue
		}
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d >= 0 {
			return d, nil
		}
	}
	return 0, errNoDuration
}
