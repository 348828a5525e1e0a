package security

import "bytes"

// audioSignatures are magic bytes of common audio containers.
var audioSignatures = [][]byte{
	[]byte("RIFF"),       // WAV
	[]byte("ID3"),        // MP3 with ID3 tag
	{0xFF, 0xFB},         // MP3 frame sync
	{0xFF, 0xF3},         // MP3 frame sync
	{0xFF, 0xF2},         // MP3 frame sync
	[]byte("OggS"),       // OGG
	[]byte("fLaC"),       // FLAC
}

// LooksLikeAudio reports whether the content starts with a known audio
// container signature. Best effort: plenty of valid audio lacks a standard
// header, so a false result must not be treated as proof of a bad upload.
func LooksLikeAudio(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	for _, sig := range audioSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
