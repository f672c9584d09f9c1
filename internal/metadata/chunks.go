package metadata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// containerAnalysis collects what a chunked container stores outside its
// pixel data.
type containerAnalysis struct {
	HasGPS       bool
	HasModel     bool
	HasTimestamp bool
	HasProfile   bool
	HasXMP       bool
	TextChunks   int
	Exif         []byte
}

func scanPNG(r io.Reader) (containerAnalysis, error) {
	analysis := containerAnalysis{}
	br := bufio.NewReader(r)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return analysis, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return analysis, errors.New("invalid PNG signature")
	}

	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				return analysis, nil
			}
			return analysis, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		chunkType := make([]byte, 4)
		if _, err := io.ReadFull(br, chunkType); err != nil {
			return analysis, err
		}
		chunkName := string(chunkType)

		switch chunkName {
		case "tEXt", "zTXt", "iTXt", "eXIf":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return analysis, err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return analysis, err
			}
			if chunkName == "eXIf" {
				analysis.Exif = data
				continue
			}
			analysis.TextChunks++
			if key := textKey(data); key != "" {
				analysis.applyKey(key)
			}
		default:
			switch chunkName {
			case "tIME":
				analysis.HasTimestamp = true
			case "iCCP":
				analysis.HasProfile = true
			}
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return analysis, err
			}
		}

		if chunkName == "IEND" {
			return analysis, nil
		}
	}
}

// scanWEBP walks the RIFF chunk list of a WEBP file.
func scanWEBP(r io.Reader) (containerAnalysis, error) {
	analysis := containerAnalysis{}
	br := bufio.NewReader(r)

	header := make([]byte, 12)
	if _, err := io.ReadFull(br, header); err != nil {
		return analysis, err
	}
	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WEBP" {
		return analysis, errors.New("invalid WEBP header")
	}

	for {
		chunkHdr := make([]byte, 8)
		if _, err := io.ReadFull(br, chunkHdr); err != nil {
			if err == io.EOF {
				return analysis, nil
			}
			return analysis, err
		}
		fourCC := string(chunkHdr[:4])
		size := int64(binary.LittleEndian.Uint32(chunkHdr[4:]))
		padded := size + size&1

		switch fourCC {
		case "EXIF":
			data := make([]byte, size)
			if _, err := io.ReadFull(br, data); err != nil {
				return analysis, err
			}
			analysis.Exif = data
			if _, err := io.CopyN(io.Discard, br, padded-size); err != nil {
				return analysis, err
			}
			continue
		case "XMP ":
			analysis.HasXMP = true
		case "ICCP":
			analysis.HasProfile = true
		}
		if _, err := io.CopyN(io.Discard, br, padded); err != nil {
			return analysis, err
		}
	}
}

func textKey(data []byte) string {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return ""
	}
	return string(data[:idx])
}

func (a *containerAnalysis) applyKey(key string) {
	lower := strings.ToLower(key)
	if strings.Contains(lower, "gps") || strings.Contains(lower, "latitude") || strings.Contains(lower, "longitude") {
		a.HasGPS = true
	}
	if strings.Contains(lower, "model") || strings.Contains(lower, "make") {
		a.HasModel = true
	}
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
		a.HasTimestamp = true
	}
	if strings.Contains(lower, "xml:com.adobe.xmp") {
		a.HasXMP = true
	}
}

func (a containerAnalysis) categories() []Category {
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
	if a.HasXMP {
		cats = append(cats, CategoryXMP)
	}
	if a.HasProfile {
		cats = append(cats, CategoryProfile)
	}
	return cats
}
