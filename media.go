package nbest

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

func ImageURL(url string) ImagePart { return ImagePart{URL: url} }

func ImageURLWithDetail(url, detail string) ImagePart {
	return ImagePart{URL: url, Detail: detail}
}

// AudioBase64 builds an audio part from already-normalized format and data.
func AudioBase64(format AudioFormat, b64 string) AudioPart {
	return AudioPart{Data: b64, Format: format}
}

// AudioFromDataURL builds an audio part from a data URL, deriving the format
// from the URL's MIME subtype. Subtypes outside the accepted set fail with
// an UnsupportedFormatError.
func AudioFromDataURL(rawDataURL string) (AudioPart, error) {
	du, err := dataurl.DecodeString(rawDataURL)
	if err != nil {
		return AudioPart{}, fmt.Errorf("parse data url: %w", err)
	}
	if du.MediaType.Type != "audio" {
		return AudioPart{}, &UnsupportedFormatError{MimeType: du.MediaType.ContentType()}
	}
	format, err := audioFormatFromSubtype(du.MediaType.Subtype)
	if err != nil {
		return AudioPart{}, err
	}
	return AudioPart{
		Data:   base64.StdEncoding.EncodeToString(du.Data),
		Format: format,
	}, nil
}

// AudioFromMIME builds an audio part from a MIME type (e.g. "audio/mpeg")
// and base64 data.
func AudioFromMIME(mimeType, b64 string) (AudioPart, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return AudioPart{}, fmt.Errorf("parse mime type %q: %w", mimeType, err)
	}
	kind, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || kind != "audio" {
		return AudioPart{}, &UnsupportedFormatError{MimeType: mediaType}
	}
	format, err := audioFormatFromSubtype(subtype)
	if err != nil {
		return AudioPart{}, err
	}
	return AudioPart{Data: b64, Format: format}, nil
}

// FileFromDataURL builds a file part, validating that the input is a
// well-formed data URL.
func FileFromDataURL(rawDataURL string) (FilePart, error) {
	if _, err := dataurl.DecodeString(rawDataURL); err != nil {
		return FilePart{}, fmt.Errorf("parse data url: %w", err)
	}
	return FilePart{Data: rawDataURL}, nil
}

// audioFormatFromSubtype normalizes a MIME subtype to an accepted audio
// format. Anything outside the accepted set is an UnsupportedFormatError,
// never a silent default.
func audioFormatFromSubtype(subtype string) (AudioFormat, error) {
	switch strings.ToLower(subtype) {
	case "mpeg", "mp3":
		return AudioMP3, nil
	case "wav", "x-wav":
		return AudioWAV, nil
	default:
		return "", &UnsupportedFormatError{MimeType: "audio/" + subtype}
	}
}
