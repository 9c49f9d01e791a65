package librivox

import (
	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

// ResolveAudioSources produces the ranked playable representations of a
// chapter. Ordering: the adaptive-streaming source leads only when allowHLS
// is set, then the proxied stream derived from the section identifier, then
// the direct file. Sources whose inputs are missing are skipped; a chapter
// with zero candidates is not a valid result.
func ResolveAudioSources(ch domain.ChapterEntry, streamBase string, allowHLS bool) ([]domain.AudioSource, error) {
	var sources []domain.AudioSource

	if allowHLS && ch.HLSID != "" && streamBase != "" {
		sources = append(sources, domain.AudioSource{
			Label:       "Adaptive (HLS)",
			Container:   "application/vnd.apple.mpegurl",
			Codec:       "aac",
			URL:         streamBase + "/hls/" + ch.HLSID + "/master.m3u8",
			DurationSec: ch.DurationSec,
		})
	}
	if ch.SectionID != "" && streamBase != "" {
		sources = append(sources, domain.AudioSource{
			Label:       "Stream (MP3)",
			Container:   "audio/mpeg",
			Codec:       "mp3",
			URL:         streamBase + "/audio/" + ch.SectionID + ".mp3",
			DurationSec: ch.DurationSec,
		})
	}
	if ch.FileURL != "" {
		sources = append(sources, domain.AudioSource{
			Label:       "Direct file (MP3)",
			Container:   "audio/mpeg",
			Codec:       "mp3",
			URL:         ch.FileURL,
			DurationSec: ch.DurationSec,
		})
	}

	if len(sources) == 0 {
		return nil, domain.Errf(domain.NoPlayableSource, "resolveAudio",
			"chapter %q has no playable source", ch.Title)
	}
	return sources, nil
}
