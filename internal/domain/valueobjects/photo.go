package valueobjects

import (
	"encoding/base64"
	"strings"
)

// Photo is a decoded user photograph. A nil Photo means "no photo".
type Photo []byte

// DecodePhoto decodes a data-URI style payload ("data:image/png;base64,AAAA").
//
// Everything up to and including the first comma is discarded. Blank input
// and malformed base64 both yield nil; a bad photo never fails the request.
func DecodePhoto(payload string) Photo {
	s := strings.TrimSpace(payload)
	if s == "" {
		return nil
	}

	if comma := strings.IndexByte(s, ','); comma >= 0 {
		s = s[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return Photo(data)
}

// DecodePhotoPtr is DecodePhoto for optional request fields.
func DecodePhotoPtr(payload *string) Photo {
	if payload == nil {
		return nil
	}
	return DecodePhoto(*payload)
}
