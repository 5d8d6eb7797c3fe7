package ember

import "fmt"

// ParameterType identifies the type of a sprite shader parameter.
type ParameterType uint8

const (
	ParameterFloat ParameterType = iota + 1
	ParameterInt
	ParameterBool
	ParameterVector2
	ParameterVector3
	ParameterVector4
	ParameterMatrix
	ParameterImage
	ParameterFloatArray
	ParameterIntArray
	ParameterBoolArray
	ParameterVector2Array
	ParameterVector3Array
	ParameterVector4Array
	ParameterMatrixArray
)

func (t ParameterType) String() string {
	switch t {
	case ParameterFloat:
		return "float"
	case ParameterInt:
		return "int"
	case ParameterBool:
		return "bool"
	case ParameterVector2:
		return "Vector2"
	case ParameterVector3:
		return "Vector3"
	case ParameterVector4:
		return "Vector4"
	case ParameterMatrix:
		return "Matrix"
	case ParameterImage:
		return "Image"
	case ParameterFloatArray:
		return "float[]"
	case ParameterIntArray:
		return "int[]"
	case ParameterBoolArray:
		return "bool[]"
	case ParameterVector2Array:
		return "Vector2[]"
	case ParameterVector3Array:
		return "Vector3[]"
	case ParameterVector4Array:
		return "Vector4[]"
	case ParameterMatrixArray:
		return "Matrix[]"
	default:
		return fmt.Sprintf("ParameterType(%d)", uint8(t))
	}
}

// IsArray reports whether t is an array type.
func (t ParameterType) IsArray() bool {
	return t >= ParameterFloatArray && t <= ParameterMatrixArray
}

// elementType returns the scalar type of an array parameter type.
func (t ParameterType) elementType() ParameterType {
	switch t {
	case ParameterFloatArray:
		return ParameterFloat
	case ParameterIntArray:
		return ParameterInt
	case ParameterBoolArray:
		return ParameterBool
	case ParameterVector2Array:
		return ParameterVector2
	case ParameterVector3Array:
		return ParameterVector3
	case ParameterVector4Array:
		return ParameterVector4
	case ParameterMatrixArray:
		return ParameterMatrix
	default:
		return t
	}
}

// arrayStride is the byte distance between consecutive array elements in a
// constant buffer. Every element is padded to a 16-byte register; matrices
// occupy four.
const arrayStride = 16

// sizeInBytes returns the packed byte size of a parameter of type t with
// the given array size.
func (t ParameterType) sizeInBytes(arraySize int) int {
	switch t {
	case ParameterFloat, ParameterInt, ParameterBool:
		return 4
	case ParameterVector2:
		return 8
	case ParameterVector3:
		return 12
	case ParameterVector4:
		return 16
	case ParameterMatrix:
		return 64
	case ParameterFloatArray, ParameterIntArray, ParameterBoolArray,
		ParameterVector2Array, ParameterVector3Array, ParameterVector4Array:
		return arraySize * arrayStride
	case ParameterMatrixArray:
		return arraySize * 64
	default:
		return 0
	}
}

// baseAlignment returns the std140 base alignment of a parameter of type t.
func (t ParameterType) baseAlignment() int {
	if t.IsArray() {
		return 16
	}
	switch t {
	case ParameterFloat, ParameterInt, ParameterBool:
		return 4
	case ParameterVector2:
		return 8
	case ParameterVector3, ParameterVector4, ParameterMatrix:
		return 16
	default:
		return 0
	}
}

// ParameterDecl declares one parameter of a sprite shader. The shader
// front end produces these alongside the translated source.
type ParameterDecl struct {
	Name string
	Type ParameterType

	// ArraySize is the element count for array types, 0 otherwise.
	ArraySize int

	// Default is the initial value applied at shader creation. Accepted
	// types per parameter type: float32, int32, bool, Vector2, Vector3,
	// Vector4 ([4]float32), Matrix. Nil means zero.
	Default any
}

// parameter is the packed runtime form of a declaration.
type parameter struct {
	name      string
	typ       ParameterType
	arraySize int

	// offset is the byte offset into the constant buffer, or for image
	// parameters the zero-based image slot (bound at texture slot 1+offset).
	offset int

	// image is the currently assigned image for image parameters.
	image *Image
}

func alignUp(v, alignment int) int {
	return (v + alignment - 1) / alignment * alignment
}

// packParameters lays out the non-image parameters of a declaration list
// into a constant buffer using std140-style rules: each field starts at a
// multiple of its base alignment and occupies at least its alignment, and
// the buffer size is padded to a 16-byte multiple. Image parameters are
// assigned sequential image slots in declaration order instead.
func packParameters(decls []ParameterDecl) (params []parameter, cbufferSize int, err error) {
	params = make([]parameter, 0, len(decls))
	offset := 0
	imageSlot := 0

	for _, d := range decls {
		if d.Name == "" {
			return nil, 0, errInvalidArgf("shader parameter with empty name")
		}
		if d.Type.IsArray() && d.ArraySize <= 0 {
			return nil, 0, errInvalidArgf("array parameter %q has size %d", d.Name, d.ArraySize)
		}

		p := parameter{name: d.Name, typ: d.Type, arraySize: d.ArraySize}

		if d.Type == ParameterImage {
			p.offset = imageSlot
			imageSlot++
			params = append(params, p)
			continue
		}

		align := d.Type.baseAlignment()
		if align == 0 {
			return nil, 0, errInvalidArgf("parameter %q has invalid type %v", d.Name, d.Type)
		}
		size := d.Type.sizeInBytes(d.ArraySize)

		p.offset = alignUp(offset, align)
		offset = p.offset + max(size, align)
		params = append(params, p)
	}

	return params, alignUp(offset, 16), nil
}
