package ember

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ImageFileFormat selects an on-disk image encoding.
type ImageFileFormat uint8

const (
	ImageFilePNG ImageFileFormat = iota + 1
	ImageFileJPEG
	ImageFileBMP
)

// jpegQuality is the encoder quality used for JPEG output.
const jpegQuality = 90

// SaveCanvasToMemory reads a canvas back and encodes it in the given
// format. Only 8-bit formats can be encoded.
func (d *Device) SaveCanvasToMemory(canvas *Image, format ImageFileFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.encodeCanvas(&buf, canvas, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveCanvasToFile reads a canvas back and writes it to path. The format
// derives from the file extension (.png, .jpg/.jpeg, .bmp).
func (d *Device) SaveCanvasToFile(canvas *Image, path string) error {
	var format ImageFileFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = ImageFilePNG
	case ".jpg", ".jpeg":
		format = ImageFileJPEG
	case ".bmp":
		format = ImageFileBMP
	default:
		return errInvalidArgf("SaveCanvasToFile: unsupported extension %q", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return WrapError(KindRuntime, "creating output file", err)
	}
	if err := d.encodeCanvas(f, canvas, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return WrapError(KindRuntime, "writing output file", err)
	}
	return nil
}

func (d *Device) encodeCanvas(w io.Writer, canvas *Image, format ImageFileFormat) error {
	if canvas == nil {
		return errInvalidArgf("canvas is nil")
	}

	var img image.Image
	switch canvas.format {
	case FormatRGBA8, FormatSRGBA8:
		data, err := d.ReadCanvasData(canvas, 0, 0, canvas.width, canvas.height)
		if err != nil {
			return err
		}
		img = &image.NRGBA{Pix: data, Stride: canvas.width * 4, Rect: image.Rect(0, 0, canvas.width, canvas.height)}
	case FormatR8:
		data, err := d.ReadCanvasData(canvas, 0, 0, canvas.width, canvas.height)
		if err != nil {
			return err
		}
		img = &image.Gray{Pix: data, Stride: canvas.width, Rect: image.Rect(0, 0, canvas.width, canvas.height)}
	default:
		return errInvalidArgf("cannot encode canvas format %v", canvas.format)
	}

	var err error
	switch format {
	case ImageFilePNG:
		err = png.Encode(w, img)
	case ImageFileJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case ImageFileBMP:
		err = bmp.Encode(w, img)
	default:
		return errInvalidArgf("unsupported image file format %d", format)
	}
	if err != nil {
		return WrapError(KindRuntime, "encoding canvas", err)
	}
	return nil
}
