package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrNoCreationTime is returned when a video carries no creation timestamp.
var ErrNoCreationTime = errors.New("no creation time in video metadata")

// creation tags in lookup order. The Apple tag keeps the local offset of the
// device, creation_time is UTC.
var creationTags = []string{"com.apple.quicktime.creationdate", "creation_time"}

var creationLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05-0700", "2006-01-02 15:04:05"}

// VideoProber reads container metadata with ffprobe.
type VideoProber struct{}

// NewVideoProber returns a prober. ffprobe must be on PATH for lookups to succeed.
func NewVideoProber() *VideoProber { return &VideoProber{} }

// CreationTime returns the recording time stored in a video container.
func (p *VideoProber) CreationTime(path string) (time.Time, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to probe video file: %w", err)
	}
	return parseProbeCreationTime(out)
}

type probeOutput struct {
	Format struct {
		Tags map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		Tags map[string]string `json:"tags"`
	} `json:"streams"`
}

func parseProbeCreationTime(out string) (time.Time, error) {
	var po probeOutput
	if err := json.Unmarshal([]byte(out), &po); err != nil {
		return time.Time{}, fmt.Errorf("could not parse ffprobe output: %w", err)
	}

	tagSets := []map[string]string{po.Format.Tags}
	for _, s := range po.Streams {
		tagSets = append(tagSets, s.Tags)
	}

	for _, name := range creationTags {
		for _, tags := range tagSets {
			v, ok := tags[name]
			if !ok {
				continue
			}
			for _, layout := range creationLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t, nil
				}
			}
		}
	}

	return time.Time{}, ErrNoCreationTime
}
