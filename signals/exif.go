package signals

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"truthlens/config"
	"truthlens/risk"
)

var exifFields = []exif.FieldName{
	exif.Make,
	exif.Model,
	exif.Software,
	exif.DateTimeOriginal,
	exif.Artist,
	exif.ImageDescription,
}

// ExifReport is the metadata layer plus the readable EXIF fields.
type ExifReport struct {
	risk.Contribution
	Present bool
	Fields  map[string]string
}

// ExifMetadata reads the EXIF block of an encoded image. A missing block is
// reported as a zero-point signal; an AI tool named in the Software or
// description tags is reported verbatim.
func ExifMetadata(data []byte, cfg config.ImageScoring) ExifReport {
	r := ExifReport{Fields: map[string]string{}}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		r.Note("No EXIF metadata found")
		return r
	}
	r.Present = true

	for _, name := range exifFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		v, err := tag.StringVal()
		if err != nil {
			continue
		}
		if v = strings.TrimSpace(strings.Trim(v, "\x00")); v != "" {
			r.Fields[string(name)] = v
		}
	}
	if len(r.Fields) == 0 {
		r.Note("EXIF block present but empty")
		return r
	}

	for _, field := range []exif.FieldName{exif.Software, exif.ImageDescription, exif.Artist} {
		v := r.Fields[string(field)]
		if tool := matchAITool(v, cfg.AITools); tool != "" {
			r.Add(cfg.ExifAITool, fmt.Sprintf("EXIF %s names an AI generator: %s", field, v))
			break
		}
	}
	return r
}

func matchAITool(v string, tools []string) string {
	lower := strings.ToLower(v)
	if lower == "" {
		return ""
	}
	for _, t := range tools {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return ""
}
