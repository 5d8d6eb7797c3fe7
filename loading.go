package ember

import (
	"errors"
	"os"

	"github.com/gogpu/ember/content"
)

// Asset type ids NewContentManager registers out of the box.
const (
	AssetTypeImage = "image"
	AssetTypeFont  = "font"
)

// NewImageFromMemory decodes image file data (PNG, JPEG, GIF, BMP, TGA,
// HDR or DDS) and uploads it as an image, mip levels included.
func NewImageFromMemory(device *Device, data []byte) (*Image, error) {
	if device == nil {
		return nil, errInvalidArgf("image: device is nil")
	}
	decoded, err := content.DecodeImage(data)
	if err != nil {
		return nil, WrapError(KindRuntime, "decoding image", err)
	}
	img, err := NewImageWithLevels(device, decoded.Width, decoded.Height, decoded.Format, decoded.Levels)
	if err != nil {
		return nil, err
	}
	Logger().Debug("image loaded",
		"container", decoded.Container,
		"size", img.Size(),
		"format", decoded.Format,
		"mips", len(decoded.Levels))
	return img, nil
}

// NewImageFromFile reads and decodes an image file.
func NewImageFromFile(device *Device, path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(KindRuntime, "reading image file", err)
	}
	return NewImageFromMemory(device, data)
}

// NewContentManager creates an asset manager rooted at dir with image and
// font loaders registered for the device. Loaded values are *Image and
// *Font respectively.
func NewContentManager(device *Device, dir string) (*content.Manager, error) {
	if device == nil {
		return nil, errInvalidArgf("content manager: device is nil")
	}
	m, err := content.NewManager(os.DirFS(dir), content.ManagerOptions{Logger: Logger()})
	if err != nil {
		return nil, WrapError(KindInvalidArgument, "creating content manager", err)
	}
	if err := m.RegisterLoader(AssetTypeImage, func(name string, data []byte) (any, error) {
		return NewImageFromMemory(device, data)
	}); err != nil {
		return nil, WrapError(KindInternal, "registering image loader", err)
	}
	if err := m.RegisterLoader(AssetTypeFont, func(name string, data []byte) (any, error) {
		return NewFont(data)
	}); err != nil {
		return nil, WrapError(KindInternal, "registering font loader", err)
	}
	return m, nil
}

// LoadImage loads an image asset through a content manager.
func LoadImage(m *content.Manager, name string) (*Image, error) {
	v, err := m.Load(AssetTypeImage, name)
	if err != nil {
		return nil, wrapContentError(err)
	}
	return v.(*Image), nil
}

// LoadFont loads a font asset through a content manager.
func LoadFont(m *content.Manager, name string) (*Font, error) {
	v, err := m.Load(AssetTypeFont, name)
	if err != nil {
		return nil, wrapContentError(err)
	}
	return v.(*Font), nil
}

// wrapContentError maps manager errors onto engine error kinds.
func wrapContentError(err error) error {
	switch {
	case errors.Is(err, content.ErrTypeConflict):
		return WrapError(KindLogic, "loading asset", err)
	case errors.Is(err, content.ErrEmptyTypeID), errors.Is(err, content.ErrNoLoader):
		return WrapError(KindInvalidArgument, "loading asset", err)
	default:
		return WrapError(KindRuntime, "loading asset", err)
	}
}
