package media

// Container classifies an audio file by its leading bytes. The result is
// diagnostic only: playback proceeds regardless of what the signature says.
type Container string

const (
	ContainerMP3     Container = "mp3"
	ContainerWAV     Container = "wav"
	ContainerMP4     Container = "mp4"
	ContainerOgg     Container = "ogg"
	ContainerFLAC    Container = "flac"
	ContainerWebM    Container = "webm"
	ContainerUnknown Container = "unknown"
)

// SniffLen is how many leading bytes DetectContainer needs at most.
const SniffLen = 12

// DetectContainer inspects the first bytes of an audio file. MP3 is matched
// on either an ID3v2 tag or a bare MPEG frame sync; MP4/M4A on the ftyp box
// at offset 4.
func DetectContainer(prefix []byte) Container {
	if len(prefix) >= 3 && prefix[0] == 'I' && prefix[1] == 'D' && prefix[2] == '3' {
		return ContainerMP3
	}
	if len(prefix) >= 2 && prefix[0] == 0xFF && prefix[1]&0xE0 == 0xE0 {
		return ContainerMP3
	}
	if len(prefix) >= 4 {
		switch string(prefix[:4]) {
		case "RIFF":
			return ContainerWAV
		case "OggS":
			return ContainerOgg
		case "fLaC":
			return ContainerFLAC
		}
		if prefix[0] == 0x1A && prefix[1] == 0x45 && prefix[2] == 0xDF && prefix[3] == 0xA3 {
			return ContainerWebM
		}
	}
	if len(prefix) >= 8 && string(prefix[4:8]) == "ftyp" {
		return ContainerMP4
	}
	return ContainerUnknown
}
