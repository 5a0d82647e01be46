package domain

import "testing"

func TestDetectMediaKind(t *testing.T) {
	cases := []struct {
		filename string
		want     MediaKind
	}{
		{"photo.jpg", MediaImage},
		{"photo.JPEG", MediaImage},
		{"scan.PNG", MediaImage},
		{"animation.gif", MediaImage},
		{"clip.mp4", MediaVideo},
		{"clip.MOV", MediaVideo},
		{"voice.wav", MediaAudio},
		{"song.with.dots.mp3", MediaAudio},
		{"report.pdf", MediaDocument},
		{"scan.tiff", MediaDocument},
		{"archive.zip", MediaUnknown},
		{"noextension", MediaUnknown},
		{"trailing.", MediaUnknown},
		{"", MediaUnknown},
	}

	for _, tc := range cases {
		if got := DetectMediaKind(tc.filename); got != tc.want {
			t.Errorf("DetectMediaKind(%q) = %s, want %s", tc.filename, got, tc.want)
		}
	}
}
