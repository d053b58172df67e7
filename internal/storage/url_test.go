package storage

import "testing"

func TestIsBucketURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"path style", "https://storage.googleapis.com/iv-audio/iv-1/3.webm", true},
		{"virtual host", "https://iv-audio.storage.googleapis.com/iv-1/3.webm", true},
		{"other bucket", "https://storage.googleapis.com/iv-audio-other/x.webm", false},
		{"bucket root", "https://iv-audio.storage.googleapis.com/", false},
		{"plain http", "http://storage.googleapis.com/iv-audio/x.webm", false},
		{"metadata host", "http://169.254.169.254/computeMetadata/v1/", false},
		{"internal host", "https://redis.internal/iv-audio/x", false},
		{"userinfo", "https://storage.googleapis.com@evil.example/iv-audio/x", false},
		{"port", "https://storage.googleapis.com:8443/iv-audio/x", false},
		{"garbage", "::not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBucketURL(tt.raw, "iv-audio"); got != tt.want {
				t.Fatalf("IsBucketURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
	if IsBucketURL("https://storage.googleapis.com/iv-audio/x", "") {
		t.Fatal("empty bucket must allow nothing")
	}
}
