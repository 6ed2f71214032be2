// pkg/sniff/sniff.go

// Package sniff guesses a file extension for field bytes from the declared
// data format token and from leading byte signatures.
package sniff

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// keyword table for bare format tokens, matched case-insensitively
var formatExt = []struct {
	token, ext string
}{
	{"jpeg", "jpg"},
	{"jpg", "jpg"},
	{"pil", "png"},
	{"png", "png"},
	{"tiff", "tiff"},
	{"str", "txt"},
	{"string", "txt"},
	{"int", "txt"},
	{"float", "txt"},
	{"bool", "txt"},
	{"bytes", "bin"},
	{"audio", "wav"},
}

// audio names matched anywhere in the token, in this order
var audioExt = []string{"wav", "mp3", "flac"}

// Magic returns the extension for audio signatures it recognizes.
func Magic(data []byte) (string, bool) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav", true
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return "mp3", true
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return "mp3", true
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		return "flac", true
	}
	return "", false
}

func fromToken(format string) (string, bool) {
	if _, sub, ok := strings.Cut(format, ":"); ok && sub != "" {
		return strings.TrimPrefix(strings.TrimSpace(sub), "."), true
	}
	if i := strings.LastIndex(format, "."); i >= 0 && i+1 < len(format) {
		return format[i+1:], true
	}
	lower := strings.ToLower(format)
	for _, m := range formatExt {
		if m.token == lower {
			return m.ext, true
		}
	}
	for _, ext := range audioExt {
		if strings.Contains(lower, ext) {
			return ext, true
		}
	}
	return "", false
}

// GuessExtension picks an extension for data declared with format, which
// may be nil when the dataset declares no format for the field. The order
// of the rules matters: callers name exported files after the result.
func GuessExtension(format *string, data []byte) (string, bool) {
	if format != nil {
		lower := strings.ToLower(*format)
		if lower == "bytes" || lower == "bin" {
			if ext, ok := Magic(data); ok {
				return ext, true
			}
			return "bin", true
		}
		if ext, ok := fromToken(*format); ok {
			return ext, true
		}
	}
	if ext, ok := Magic(data); ok {
		return ext, true
	}
	if utf8.Valid(data) && len(strings.TrimSpace(string(data))) > 0 {
		return "txt", true
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || kind.Extension == "" {
		return "", false
	}
	return kind.Extension, true
}
