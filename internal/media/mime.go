package media

import (
	"path"
	"strings"
)

// ContentTypeForPath maps an audio file extension to its MIME type. Unknown
// extensions fall back to audio/mpeg: the clients are audio elements, and an
// audio type they can at least attempt beats application/octet-stream.
func ContentTypeForPath(filePath string) string {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(filePath, "\\", "/"))) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	case ".m4a":
		return "audio/mp4"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	default:
		return "audio/mpeg"
	}
}
