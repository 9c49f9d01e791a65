package librivox

import (
	"testing"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

const testStream = "https://librivox.example/stream"

func TestResolveAudioSources_ProxiedOnly(t *testing.T) {
	ch := domain.ChapterEntry{Title: "Loomings", SectionID: "900", DurationSec: 600}

	sources, err := ResolveAudioSources(ch, testStream, false)
	if err != nil {
		t.Fatalf("ResolveAudioSources failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected exactly 1 source, got %d", len(sources))
	}
	src := sources[0]
	if src.Codec != "mp3" || src.Container != "audio/mpeg" {
		t.Errorf("unexpected codec/container: %s/%s", src.Codec, src.Container)
	}
	if src.URL != testStream+"/audio/900.mp3" {
		t.Errorf("proxied URL not derived from section id: %q", src.URL)
	}
	if src.DurationSec != 600 {
		t.Errorf("expected duration 600, got %d", src.DurationSec)
	}
}

func TestResolveAudioSources_Empty(t *testing.T) {
	_, err := ResolveAudioSources(domain.ChapterEntry{Title: "Silent"}, testStream, true)
	if err == nil {
		t.Fatal("expected error for chapter with no usable fields")
	}
	if !domain.IsKind(err, domain.NoPlayableSource) {
		t.Errorf("expected NoPlayableSource, got %v", err)
	}
}

func TestResolveAudioSources_Ordering(t *testing.T) {
	ch := domain.ChapterEntry{
		SectionID: "900",
		FileURL:   "https://files.example/ch.mp3",
		HLSID:     "abc",
	}

	// HLS disabled: adaptive source must not appear at all.
	sources, err := ResolveAudioSources(ch, testStream, false)
	if err != nil {
		t.Fatalf("ResolveAudioSources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources without HLS, got %d", len(sources))
	}
	if sources[0].Label != "Stream (MP3)" || sources[1].Label != "Direct file (MP3)" {
		t.Errorf("unexpected order: %q, %q", sources[0].Label, sources[1].Label)
	}

	// HLS enabled: adaptive source leads.
	sources, err = ResolveAudioSources(ch, testStream, true)
	if err != nil {
		t.Fatalf("ResolveAudioSources failed: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources with HLS, got %d", len(sources))
	}
	if sources[0].Container != "application/vnd.apple.mpegurl" {
		t.Errorf("adaptive source must lead when enabled, got %q", sources[0].Container)
	}
	if sources[0].URL != testStream+"/hls/abc/master.m3u8" {
		t.Errorf("unexpected HLS URL %q", sources[0].URL)
	}
}

func TestResolveAudioSources_NoStreamBase(t *testing.T) {
	ch := domain.ChapterEntry{
		SectionID: "900",
		FileURL:   "https://files.example/ch.mp3",
		HLSID:     "abc",
	}

	// Without a stream base neither derived source can be built, even with
	// HLS allowed; only the direct file remains.
	sources, err := ResolveAudioSources(ch, "", true)
	if err != nil {
		t.Fatalf("ResolveAudioSources failed: %v", err)
	}
	if len(sources) != 1 || sources[0].URL != ch.FileURL {
		t.Errorf("expected only the direct source, got %+v", sources)
	}
}

func TestResolveAudioSources_DirectOnly(t *testing.T) {
	ch := domain.ChapterEntry{FileURL: "https://files.example/ch.mp3"}
	sources, err := ResolveAudioSources(ch, testStream, true)
	if err != nil {
		t.Fatalf("ResolveAudioSources failed: %v", err)
	}
	if len(sources) != 1 || sources[0].URL != ch.FileURL {
		t.Errorf("unexpected sources %+v", sources)
	}
}
