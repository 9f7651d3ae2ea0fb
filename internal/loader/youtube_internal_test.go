package loader

import "testing"

func TestPickBestTrack(t *testing.T) {
	manualDE := captionTrack{BaseURL: "https://x/de", LanguageCode: "de"}
	asrEN := captionTrack{BaseURL: "https://x/en-asr", LanguageCode: "en", Kind: "asr"}
	manualEN := captionTrack{BaseURL: "https://x/en", LanguageCode: "en"}
	manualENGB := captionTrack{BaseURL: "https://x/en-GB", LanguageCode: "en-GB"}
	poTokenEN := captionTrack{BaseURL: "https://x/en?a=1&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		langs  []string
		want   captionTrack
		wantOK bool
	}{
		{"Manual beats ASR", []captionTrack{asrEN, manualEN}, []string{"en"}, manualEN, true},
		{"ASR in preferred language", []captionTrack{manualDE, asrEN}, []string{"en"}, asrEN, true},
		{"Language order wins", []captionTrack{manualEN, manualDE}, []string{"de", "en"}, manualDE, true},
		{"Any English fallback", []captionTrack{manualDE, manualENGB}, []string{"fr"}, manualENGB, true},
		{"First usable fallback", []captionTrack{manualDE}, []string{"fr"}, manualDE, true},
		{"PoToken tracks skipped", []captionTrack{poTokenEN, manualDE}, []string{"en"}, manualDE, true},
		{"Only PoToken tracks", []captionTrack{poTokenEN}, []string{"en"}, captionTrack{}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := pickBestTrack(test.tracks, test.langs)
			if ok != test.wantOK {
				t.Fatalf("Expected ok = %v, got %v", test.wantOK, ok)
			}

			if got != test.want {
				t.Errorf("Expected %+v, got %+v", test.want, got)
			}
		})
	}
}

func TestNeedsPoToken(t *testing.T) {
	tests := []struct {
		baseURL string
		want    bool
	}{
		{"https://www.youtube.com/api/timedtext?v=abc&lang=en", false},
		{"https://www.youtube.com/api/timedtext?v=abc&exp=xpe&lang=en", true},
		{"https://www.youtube.com/api/timedtext?exp=xpe&v=abc", true},
		{"https://www.youtube.com/api/timedtext?v=abc&exp=other", false},
		{"https://www.youtube.com/api/timedtext?v=abc&name=exp%3Dxpe", false},
	}

	for _, test := range tests {
		if got := needsPoToken(test.baseURL); got != test.want {
			t.Errorf("needsPoToken(%q) = %v, want %v", test.baseURL, got, test.want)
		}
	}
}

func TestPickBestTrackSkipsLeadingPoTokenParam(t *testing.T) {
	leading := captionTrack{BaseURL: "https://x/en?exp=xpe&v=1", LanguageCode: "en"}
	fallback := captionTrack{BaseURL: "https://x/de?v=1", LanguageCode: "de"}

	got, ok := pickBestTrack([]captionTrack{leading, fallback}, []string{"en"})
	if !ok || got != fallback {
		t.Errorf("Expected %+v, got %+v (ok = %v)", fallback, got, ok)
	}
}

func TestCaptionTracksSkipsEmptyBaseURL(t *testing.T) {
	raw := []byte(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
		{"baseUrl":"","languageCode":"en"},
		{"baseUrl":"https://x/de","languageCode":"de","kind":"asr"}
	]}}}`)

	tracks := captionTracks(raw)
	if len(tracks) != 1 {
		t.Fatalf("Expected 1 track, got %d", len(tracks))
	}

	if tracks[0].LanguageCode != "de" || tracks[0].Kind != "asr" {
		t.Errorf("Unexpected track: %+v", tracks[0])
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags(`<p>Fish &amp; <b>chips</b></p><script>x()</script>`)
	if got != "Fish & chips" {
		t.Errorf("Unexpected stripped text: %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld", 5); got != "héllo..." {
		t.Errorf("Unexpected truncation: %q", got)
	}

	if got := truncateRunes("short", 0); got != "short" {
		t.Errorf("Expected no truncation, got %q", got)
	}
}
