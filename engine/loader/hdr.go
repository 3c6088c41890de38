package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// maxRLEWidth is the widest scanline the adaptive run-length encoding can describe.
const maxRLEWidth = 0x7fff

// ErrMalformedHDR is wrapped by every Radiance decoding error.
var ErrMalformedHDR = errors.New("malformed radiance image")

// radianceBackend decodes Radiance RGBE (.hdr) images into float RGB.
type radianceBackend struct{}

var _ imageBackend = radianceBackend{}

// Decode reads the header, the resolution line and the scanlines. Scanlines may be flat, use the
// old repeat-pixel runs, or use the adaptive per-channel runs. Only the standard "-Y h +X w"
// orientation is accepted.
func (radianceBackend) Decode(name string, r io.Reader, flip bool) (*common.ImageData, error) {
	br := bufio.NewReader(r)
	width, height, err := readRadianceHeader(br)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	floats := make([]float32, width*height*3)
	scan := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readScanline(br, scan, width); err != nil {
			return nil, fmt.Errorf("decode %s: scanline %d: %w", name, y, err)
		}
		row := floats[y*width*3 : (y+1)*width*3]
		for x := 0; x < width; x++ {
			rgbeToFloat(scan[x*4:x*4+4], row[x*3:x*3+3])
		}
	}
	if flip {
		flipRows(floats, width*3)
	}

	return &common.ImageData{
		Name:     name,
		Width:    width,
		Height:   height,
		Channels: 3,
		HDR:      true,
		Floats:   floats,
	}, nil
}

func readRadianceHeader(br *bufio.Reader) (width, height int, err error) {
	line, err := readLine(br)
	if err != nil {
		return 0, 0, err
	}
	if !strings.HasPrefix(line, "#?") {
		return 0, 0, fmt.Errorf("%w: missing #? signature", ErrMalformedHDR)
	}

	for {
		line, err = readLine(br)
		if err != nil {
			return 0, 0, err
		}
		if line == "" {
			break
		}
		if format, ok := strings.CutPrefix(line, "FORMAT="); ok && format != "32-bit_rle_rgbe" {
			return 0, 0, fmt.Errorf("%w: unsupported format %q", ErrMalformedHDR, format)
		}
	}

	line, err = readLine(br)
	if err != nil {
		return 0, 0, err
	}
	if _, err := fmt.Sscanf(line, "-Y %d +X %d", &height, &width); err != nil {
		return 0, 0, fmt.Errorf("%w: unsupported resolution line %q", ErrMalformedHDR, line)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: invalid size %dx%d", ErrMalformedHDR, width, height)
	}
	return width, height, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: truncated header", ErrMalformedHDR)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readScanline fills scan with width RGBE pixels.
func readScanline(br *bufio.Reader, scan []byte, width int) error {
	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return truncated(err)
	}

	adaptive := width >= 8 && width <= maxRLEWidth && head[0] == 2 && head[1] == 2 && head[2]&0x80 == 0
	if !adaptive {
		copy(scan, head[:])
		return readFlatScanline(br, scan, width)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("%w: scanline width mismatch", ErrMalformedHDR)
	}

	// Channels are stored one after another, each as runs or literal spans.
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return truncated(err)
			}
			if count > 128 {
				n := int(count - 128)
				if x+n > width {
					return fmt.Errorf("%w: run overflows scanline", ErrMalformedHDR)
				}
				v, err := br.ReadByte()
				if err != nil {
					return truncated(err)
				}
				for ; n > 0; n-- {
					scan[x*4+c] = v
					x++
				}
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("%w: bad literal span", ErrMalformedHDR)
			}
			for ; n > 0; n-- {
				v, err := br.ReadByte()
				if err != nil {
					return truncated(err)
				}
				scan[x*4+c] = v
				x++
			}
		}
	}
	return nil
}

// readFlatScanline reads the remaining pixels of a scanline whose first pixel is already in scan.
// A pixel of (1,1,1,n) repeats the previous pixel n<<shift times.
func readFlatScanline(br *bufio.Reader, scan []byte, width int) error {
	x, shift := 0, 0
	for {
		p := scan[x*4 : x*4+4]
		if p[0] == 1 && p[1] == 1 && p[2] == 1 {
			if x == 0 {
				return fmt.Errorf("%w: repeat without a previous pixel", ErrMalformedHDR)
			}
			n := int(p[3]) << shift
			if x+n > width {
				return fmt.Errorf("%w: run overflows scanline", ErrMalformedHDR)
			}
			prev := scan[(x-1)*4 : x*4]
			for ; n > 0; n-- {
				copy(scan[x*4:x*4+4], prev)
				x++
			}
			shift += 8
		} else {
			x++
			shift = 0
		}
		if x >= width {
			return nil
		}
		if _, err := io.ReadFull(br, scan[x*4:x*4+4]); err != nil {
			return truncated(err)
		}
	}
}

func rgbeToFloat(rgbe []byte, out []float32) {
	if rgbe[3] == 0 {
		out[0], out[1], out[2] = 0, 0, 0
		return
	}
	f := float32(math.Ldexp(1, int(rgbe[3])-(128+8)))
	out[0] = float32(rgbe[0]) * f
	out[1] = float32(rgbe[1]) * f
	out[2] = float32(rgbe[2]) * f
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated pixel data", ErrMalformedHDR)
	}
	return err
}
