package formats

import "wavecast-hq/tunegate/pkg/upstream"

// DefaultStreamMIME is served when an encoding's container is unknown.
// It is the provider's dominant audio container.
const DefaultStreamMIME = "audio/webm"

// containerMIMEs maps container names to the MIME type served for
// inline playback.
var containerMIMEs = map[string]string{
	"webm": "audio/webm",
	"mp4":  "audio/mp4",
	"m4a":  "audio/mp4",
	"mp3":  "audio/mpeg",
	"mpeg": "audio/mpeg",
	"ogg":  "audio/ogg",
	"opus": "audio/ogg",
}

// ContainerMIME returns the MIME type to serve when relaying an
// encoding inline.
func ContainerMIME(desc upstream.EncodingDescriptor) string {
	if mime, ok := containerMIMEs[desc.Container()]; ok {
		return mime
	}
	return DefaultStreamMIME
}
