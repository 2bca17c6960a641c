package server

import (
	"mime"
	"path/filepath"
	"strings"
)

// audioTypes fills in audio entries that the host's mime registry frequently
// lacks. Consulted after the config overrides, before mime.TypeByExtension.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

// mimeTypeFor derives the Content-Type from the file extension alone. The
// config override map wins (it pins .wav to audio/wav regardless of what the
// host registry claims), then the audio table, then the general registry.
func (s *Server) mimeTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := s.cfg.MIMEOverrides[ext]; ok {
		return t
	}
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
