package video

import (
	"context"
	"log/slog"
)

// PlatformSpec captures the encoding target a platform prefers for
// short-form vertical video.
type PlatformSpec struct {
	Width        int
	Height       int
	VideoBitrate string
	AudioBitrate string
}

// platformSpecs is keyed by platform name; everything short-form is 9:16.
var platformSpecs = map[string]PlatformSpec{
	"youtube":   {Width: 1080, Height: 1920, VideoBitrate: "5000k", AudioBitrate: "128k"},
	"tiktok":    {Width: 1080, Height: 1920, VideoBitrate: "4000k", AudioBitrate: "128k"},
	"instagram": {Width: 1080, Height: 1920, VideoBitrate: "3500k", AudioBitrate: "128k"},
	"facebook":  {Width: 1080, Height: 1920, VideoBitrate: "4000k", AudioBitrate: "128k"},
}

// SpecFor returns the encoding target for a platform, falling back to the
// YouTube profile for anything unknown.
func SpecFor(platform string) PlatformSpec {
	if spec, ok := platformSpecs[platform]; ok {
		return spec
	}
	return platformSpecs["youtube"]
}

// Optimizer adapts a stored video for a platform before publish and returns
// the handle the publisher should use. Failures propagate as publish
// failures.
type Optimizer interface {
	OptimizeForPlatform(ctx context.Context, fileURL, platform string) (string, error)
}

// PassthroughOptimizer hands the stored file through unchanged. Uploads are
// normalized to the 9:16 profile at ingest time, so per-platform re-encoding
// happens out-of-band when it happens at all.
type PassthroughOptimizer struct{}

func NewPassthroughOptimizer() *PassthroughOptimizer {
	return &PassthroughOptimizer{}
}

func (o *PassthroughOptimizer) OptimizeForPlatform(ctx context.Context, fileURL, platform string) (string, error) {
	spec := SpecFor(platform)
	slog.Debug("serving stored rendition", "platform", platform, "target_bitrate", spec.VideoBitrate)
	return fileURL, nil
}
