package metadata

import (
	"errors"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

type exifAnalysis struct {
	Tags         int
	HasGPS       bool
	GPSCount     int
	HasModel     bool
	HasTimestamp bool
	SerialCount  int
}

// analyzeExif locates the TIFF-structured EXIF block inside data, which may
// be a whole JPEG or TIFF file or a bare eXIf/EXIF chunk payload.
func analyzeExif(data []byte) (exifAnalysis, error) {
	analysis := exifAnalysis{}

	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if isNoExif(err) {
			return analysis, nil
		}
		return analysis, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return analysis, err
	}

	analysis.Tags = len(tags)
	for _, tag := range tags {
		name := tag.TagName
		lower := strings.ToLower(name)

		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			analysis.HasGPS = true
			analysis.GPSCount++
		}
		if name == "Make" || name == "Model" || name == "CameraModelName" {
			analysis.HasModel = true
		}
		if name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime" {
			analysis.HasTimestamp = true
		}
		if strings.Contains(lower, "serial") {
			analysis.SerialCount++
		}
	}

	return analysis, nil
}

func (a exifAnalysis) categories() []Category {
	cats := []Category{}
	if a.HasGPS {
		cats = append(cats, CategoryGPS)
	}
	if a.HasModel {
		cats = append(cats, CategoryDevice)
	}
	if a.HasTimestamp {
		cats = append(cats, CategoryTimestamp)
	}
	if a.SerialCount > 0 {
		cats = append(cats, CategorySerial)
	}
	return cats
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
