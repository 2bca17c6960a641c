package server

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		name   string
		header string
		size   int64
		want   byteRange
		state  rangeState
	}{
		{"first hundred", "bytes=0-99", 500, byteRange{0, 99}, rangeValid},
		{"open ended", "bytes=450-", 500, byteRange{450, 499}, rangeValid},
		{"suffix", "bytes=-100", 500, byteRange{400, 499}, rangeValid},
		{"suffix larger than file", "bytes=-9999", 500, byteRange{0, 499}, rangeValid},
		{"end clamped", "bytes=400-9999", 500, byteRange{400, 499}, rangeValid},
		{"single byte", "bytes=0-0", 500, byteRange{0, 0}, rangeValid},
		{"last byte", "bytes=499-499", 500, byteRange{499, 499}, rangeValid},
		{"start at eof", "bytes=500-", 500, byteRange{}, rangeUnsatisfiable},
		{"start past eof", "bytes=9999-19999", 500, byteRange{}, rangeUnsatisfiable},
		{"empty file", "bytes=0-10", 0, byteRange{}, rangeUnsatisfiable},
		{"wrong unit", "bits=0-99", 500, byteRange{}, rangeIgnore},
		{"no spec", "bytes=", 500, byteRange{}, rangeIgnore},
		{"garbage", "bytes=abc-def", 500, byteRange{}, rangeIgnore},
		{"multipart", "bytes=0-10,20-30", 500, byteRange{}, rangeIgnore},
		{"inverted", "bytes=50-10", 500, byteRange{}, rangeIgnore},
		{"negative start", "bytes=--5-10", 500, byteRange{}, rangeIgnore},
		{"missing dash", "bytes=100", 500, byteRange{}, rangeIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, state := parseRange(tt.header, tt.size)
			if state != tt.state {
				t.Fatalf("state = %v, want %v", state, tt.state)
			}
			if state == rangeValid && got != tt.want {
				t.Errorf("range = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolvePathStaysUnderRoot(t *testing.T) {
	root := "/srv/recordings"

	tests := []struct {
		reqPath string
		want    string
	}{
		{"/", root},
		{"/night.wav", root + "/night.wav"},
		{"/sub/clip.wav", root + "/sub/clip.wav"},
		{"/../etc/passwd", root + "/etc/passwd"},
		{"/sub/../../../etc/passwd", root + "/etc/passwd"},
		{"/./sub//clip.wav", root + "/sub/clip.wav"},
	}

	for _, tt := range tests {
		got, ok := resolvePath(root, tt.reqPath)
		if !ok {
			t.Errorf("resolvePath(%q) rejected, want %q", tt.reqPath, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("resolvePath(%q) = %q, want %q", tt.reqPath, got, tt.want)
		}
	}

	if _, ok := resolvePath(root, "/nul\x00byte"); ok {
		t.Error("resolvePath accepted a NUL byte")
	}
}
