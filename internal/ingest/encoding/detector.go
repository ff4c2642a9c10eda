// Package encoding guesses and decodes the byte encoding of text files.
package encoding

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	// SampleSize bounds how much of the input the statistical detector sees.
	SampleSize = 10 * 1024
	// ProbeSize bounds how much of the input each fallback probe decodes.
	ProbeSize = 1000
	// MinConfidence is the detector confidence (0..1) below which probes run.
	MinConfidence = 0.7

	// Default is returned when nothing else matches.
	Default = "utf-8"
)

// Fallbacks are probed in order when the detector is unsure.
var Fallbacks = []string{"utf-8", "latin-1", "cp1252"}

var aliases = map[string]xenc.Encoding{
	"latin-1": charmap.ISO8859_1,
	"latin1":  charmap.ISO8859_1,
	"cp1252":  charmap.Windows1252,
}

// Detector guesses text encodings. The zero value is not usable; call New.
type Detector struct {
	text   *chardet.Detector
	logger *zap.Logger
}

// New creates a Detector.
func New(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{text: chardet.NewTextDetector(), logger: logger}
}

// Detect returns a best-guess encoding name. It never fails.
func (d *Detector) Detect(data []byte) string {
	if len(data) == 0 {
		return Default
	}
	sample := data
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	res, err := d.text.DetectBest(sample)
	if err == nil && res != nil && res.Charset != "" &&
		float64(res.Confidence)/100 >= MinConfidence {
		return strings.ToLower(res.Charset)
	}

	probe := data
	if len(probe) > ProbeSize {
		probe = probe[:ProbeSize]
	}
	for _, name := range Fallbacks {
		if canDecode(probe, name) {
			d.logger.Debug("encoding resolved by probe", zap.String("encoding", name))
			return name
		}
	}
	return Default
}

// Decode converts data to UTF-8 text using the named encoding. Unknown names
// and invalid sequences degrade to UTF-8 with replacement characters.
func Decode(data []byte, name string) string {
	enc := lookup(name)
	if enc == nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(out)
}

func canDecode(probe []byte, name string) bool {
	if isUTF8(name) {
		return validUTF8Prefix(probe)
	}
	enc := lookup(name)
	if enc == nil {
		return false
	}
	_, err := enc.NewDecoder().Bytes(probe)
	return err == nil
}

// validUTF8Prefix accepts a probe whose only defect is a rune cut at the end.
func validUTF8Prefix(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}
	for cut := 1; cut < utf8.UTFMax && cut < len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) && !utf8.FullRune(b[len(b)-cut:]) {
			return true
		}
	}
	return false
}

func lookup(name string) xenc.Encoding {
	n := strings.ToLower(strings.TrimSpace(name))
	if isUTF8(n) {
		return nil
	}
	if enc, ok := aliases[n]; ok {
		return enc
	}
	enc, err := htmlindex.Get(n)
	if err != nil {
		return nil
	}
	return enc
}

func isUTF8(name string) bool {
	n := strings.ToLower(name)
	return n == "utf-8" || n == "utf8" || n == "ascii" || n == "us-ascii"
}
