package pathutil

import "testing"

// NormalizePath sits on the hot path of every request's metrics
// recording, so it has to stay well under a microsecond.
func BenchmarkNormalizePath(b *testing.B) {
	paths := []string{
		"/feed/scroll",
		"/feed/scroll?cursor=abc&limit=10",
		"/feed/detail/reddit:abc123",
		"/feed/detail/scripture%3Abom%2Falma%2F32",
		"/feed/respond",
		"/feed/config",
		"/healthz",
		"/metrics",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NormalizePath(paths[i%len(paths)])
	}
}

func BenchmarkNormalizePath_Match(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NormalizePath("/feed/detail/reddit:abc123")
	}
}

func BenchmarkNormalizePath_NoMatch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NormalizePath("/feed/scroll")
	}
}
