package imgutil

import (
	"bytes"
	"io"
	"os"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindGIF
	KindWEBP
	KindTIFF
	KindBMP
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindGIF:
		return "gif"
	case KindWEBP:
		return "webp"
	case KindTIFF:
		return "tiff"
	case KindBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

// HeaderSize is the number of leading bytes Detect needs to tell every
// supported container apart.
const HeaderSize = 14

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	gif87Sig  = []byte("GIF87a")
	gif89Sig  = []byte("GIF89a")
	riffSig   = []byte("RIFF")
	webpSig   = []byte("WEBP")
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	bmpSig    = []byte("BM")
)

// Detect inspects the leading bytes of data for known signatures. Inputs
// shorter than a signature are reported as KindUnknown.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, jpegSig):
		return KindJPEG
	case bytes.HasPrefix(data, pngSig):
		return KindPNG
	case bytes.HasPrefix(data, gif87Sig), bytes.HasPrefix(data, gif89Sig):
		return KindGIF
	case len(data) >= 12 && bytes.HasPrefix(data, riffSig) && bytes.Equal(data[8:12], webpSig):
		return KindWEBP
	case bytes.HasPrefix(data, tiffSigLE), bytes.HasPrefix(data, tiffSigBE):
		return KindTIFF
	case len(data) >= HeaderSize && bytes.HasPrefix(data, bmpSig):
		return KindBMP
	default:
		return KindUnknown
	}
}

// SniffFile reads the header of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to HeaderSize bytes from r and determines its type.
// A short read is not an error; the available bytes are inspected.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return KindUnknown, err
	}

	return Detect(header[:n]), nil
}
