package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Banner is a storefront hero/slider image.
type Banner struct {
	Audit
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
	Link     string `json:"link"`
	Position int    `json:"position"`
	Status   Flag   `json:"status"`
}

// Flag is a boolean that multipart endpoints persist as "true"/"false".
// It decodes from either a JSON bool or that string form.
type Flag bool

// EncodeBannerStatus renders a status for a multipart form field.
func EncodeBannerStatus(status bool) string {
	return strconv.FormatBool(status)
}

// DecodeBannerStatus parses the multipart string form back into a bool.
func DecodeBannerStatus(raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid banner status %q: %w", raw, err)
	}
	return v, nil
}

// FormValue is the multipart encoding of the flag.
func (f Flag) FormValue() string {
	return EncodeBannerStatus(bool(f))
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag must be a bool or string: %w", err)
	}
	v, err := DecodeBannerStatus(s)
	if err != nil {
		return err
	}
	*f = Flag(v)
	return nil
}
