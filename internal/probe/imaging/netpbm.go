package imaging

import (
	"bytes"
	"context"
	"math/bits"
	"strconv"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// netpbmHeadLen bounds the header; comments may precede the numbers.
const netpbmHeadLen = 4096

// NetPBM reads the header of a portable bitmap (P1 to P7).
func NetPBM(ctx context.Context, path string) (*info.ImageInfo, error) {
	head, err := readHead(path, netpbmHeadLen)
	if err != nil {
		return nil, probe.NotApplicable(NameNetPBM, err)
	}
	return ParseNetPBM(head)
}

// ParseNetPBM parses a NetPBM header from the leading bytes of a file.
func ParseNetPBM(head []byte) (*info.ImageInfo, error) {
	if len(head) < 3 || head[0] != 'P' || head[1] < '1' || head[1] > '7' || !isSpace(head[2]) {
		return nil, probe.NotApplicablef(NameNetPBM, "missing P1-P7 magic")
	}
	if head[1] == '7' {
		return parsePAM(head[3:])
	}

	want := 3 // width, height, maxval
	if head[1] == '1' || head[1] == '4' {
		want = 2
	}
	nums, err := headerNumbers(head[2:], want)
	if err != nil {
		return nil, err
	}
	img := &info.ImageInfo{Width: nums[0], Height: nums[1]}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, probe.Corruptedf(NameNetPBM, "invalid size %dx%d", img.Width, img.Height)
	}
	switch head[1] {
	case '1', '4':
		img.ColorMode, img.Depth = "Gray", 1
	case '2', '5':
		img.ColorMode = "Gray"
	case '3', '6':
		img.ColorMode = "RGB"
	}
	if want == 3 {
		if nums[2] < 1 || nums[2] > 65535 {
			return nil, probe.Corruptedf(NameNetPBM, "invalid maxval %d", nums[2])
		}
		img.Depth = bits.Len(uint(nums[2]))
	}
	return img, nil
}

// headerNumbers reads n decimal numbers separated by whitespace and
// '#' comments.
func headerNumbers(b []byte, n int) ([]int, error) {
	out := make([]int, 0, n)
	i := 0
	for len(out) < n {
		for i < len(b) && (isSpace(b[i]) || b[i] == '#') {
			if b[i] == '#' {
				for i < len(b) && b[i] != '\n' && b[i] != '\r' {
					i++
				}
				continue
			}
			i++
		}
		start := i
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
		}
		if start == i {
			return nil, probe.Corruptedf(NameNetPBM, "header field %d is not a number", len(out)+1)
		}
		v, err := strconv.Atoi(string(b[start:i]))
		if err != nil {
			return nil, probe.Corrupted(NameNetPBM, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parsePAM reads "KEY value" lines up to ENDHDR.
func parsePAM(b []byte) (*info.ImageInfo, error) {
	var (
		img      info.ImageInfo
		depth    int
		maxval   int
		tupl     string
		complete bool
	)
	for _, line := range bytes.Split(b, []byte("\n")) {
		f := strings.Fields(string(line))
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if f[0] == "ENDHDR" {
			complete = true
			break
		}
		if len(f) < 2 {
			return nil, probe.Corruptedf(NameNetPBM, "PAM field %q without value", f[0])
		}
		var err error
		switch f[0] {
		case "WIDTH":
			img.Width, err = strconv.Atoi(f[1])
		case "HEIGHT":
			img.Height, err = strconv.Atoi(f[1])
		case "DEPTH":
			depth, err = strconv.Atoi(f[1])
		case "MAXVAL":
			maxval, err = strconv.Atoi(f[1])
		case "TUPLTYPE":
			tupl = f[1]
		}
		if err != nil {
			return nil, probe.Corrupted(NameNetPBM, err)
		}
	}
	if !complete {
		return nil, probe.Corruptedf(NameNetPBM, "PAM header without ENDHDR")
	}
	if img.Width <= 0 || img.Height <= 0 || maxval < 1 || maxval > 65535 {
		return nil, probe.Corruptedf(NameNetPBM, "invalid PAM header")
	}
	img.Depth = bits.Len(uint(maxval))
	switch {
	case strings.HasPrefix(tupl, "BLACKANDWHITE"), strings.HasPrefix(tupl, "GRAYSCALE"):
		img.ColorMode = "Gray"
	case strings.HasPrefix(tupl, "RGB"):
		img.ColorMode = "RGB"
	case depth == 1 || depth == 2:
		img.ColorMode = "Gray"
	case depth == 3 || depth == 4:
		img.ColorMode = "RGB"
	}
	return &img, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
