// Command embergen inspects and converts ember image assets.
//
// Usage:
//
//	embergen info <file>
//	embergen png <input> <output.png>
//
// info prints the decoded dimensions, pixel format and mip count of an
// asset (PNG, JPEG, GIF, BMP, TGA, HDR or DDS). png decodes an asset and
// writes its top mip level as a PNG file.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/gogpu/ember/content"
	"github.com/gogpu/ember/gpu"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("embergen: ")

	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "info":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		if err := runInfo(args[1]); err != nil {
			log.Fatal(err)
		}
	case "png":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := runPNG(args[1], args[2]); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  embergen info <file>")
	fmt.Fprintln(os.Stderr, "  embergen png <input> <output.png>")
}

func runInfo(path string) error {
	img, err := decodeFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  container: %s\n", img.Container)
	fmt.Printf("  size:      %dx%d\n", img.Width, img.Height)
	fmt.Printf("  format:    %s\n", img.Format)
	fmt.Printf("  mips:      %d\n", len(img.Levels))
	return nil
}

func runPNG(input, output string) error {
	img, err := decodeFile(input)
	if err != nil {
		return err
	}

	rgba, err := toNRGBA(img)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, rgba); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %s (%dx%d)", output, img.Width, img.Height)
	return nil
}

func decodeFile(path string) (*content.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return content.DecodeImage(data)
}

// toNRGBA converts the top mip level to an 8-bit NRGBA image. Float
// pixels are clamped; there is no tone mapping.
func toNRGBA(img *content.Image) (*image.NRGBA, error) {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	src := img.Levels[0]

	switch img.Format {
	case gpu.FormatRGBA8, gpu.FormatSRGBA8:
		copy(out.Pix, src)
	case gpu.FormatR8:
		for i, v := range src {
			out.Pix[i*4+0] = v
			out.Pix[i*4+1] = v
			out.Pix[i*4+2] = v
			out.Pix[i*4+3] = 255
		}
	case gpu.FormatRGBA32F:
		for i := 0; i < img.Width*img.Height*4; i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
			out.Pix[i] = clamp8(v)
		}
	default:
		return nil, fmt.Errorf("cannot convert %s to PNG", img.Format)
	}
	return out, nil
}

func clamp8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
