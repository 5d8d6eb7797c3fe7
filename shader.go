package ember

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"

	"github.com/gogpu/ember/gpu"
)

// Shader is a user-provided sprite shading program together with its
// parameter store. Non-image parameters live in a CPU-side constant buffer
// packed with std140-style rules; image parameters occupy texture slots
// starting at 1 (slot 0 always carries the sprite texture).
//
// Parameter writes are deferred: they update the constant buffer and mark
// the parameter dirty, and the renderer uploads dirty parameters when the
// shader next becomes active. Writes are rejected while the shader is the
// device's active sprite shader.
type Shader struct {
	device *Device
	name   string
	source string

	// params is sorted by name for binary-search lookup.
	params      []parameter
	imageParams []*parameter

	cbuffer     []byte
	dirtyScalar map[*parameter]struct{}
	dirtyImage  map[*parameter]struct{}

	inUse     bool
	destroyed bool

	// program is compiled by the renderer on first use.
	program gpu.Program
}

// NewShader creates a sprite shader from a translated fragment source and
// its parameter declarations. The shader front end (external to this
// package) produces both. Default parameter values are applied before the
// shader is returned.
func NewShader(device *Device, name, fragmentSource string, decls []ParameterDecl) (*Shader, error) {
	if device == nil {
		return nil, errInvalidArgf("shader %q: device is nil", name)
	}
	if fragmentSource == "" {
		return nil, errInvalidArgf("shader %q: empty source", name)
	}

	params, cbufferSize, err := packParameters(decls)
	if err != nil {
		return nil, err
	}

	sort.Slice(params, func(i, j int) bool { return params[i].name < params[j].name })

	s := &Shader{
		device:      device,
		name:        name,
		source:      fragmentSource,
		params:      params,
		cbuffer:     make([]byte, cbufferSize),
		dirtyScalar: make(map[*parameter]struct{}),
		dirtyImage:  make(map[*parameter]struct{}),
	}

	for i := range s.params {
		p := &s.params[i]
		if p.typ == ParameterImage {
			s.imageParams = append(s.imageParams, p)
			s.dirtyImage[p] = struct{}{}
		} else {
			s.dirtyScalar[p] = struct{}{}
		}
	}

	if err := s.applyDefaults(decls); err != nil {
		return nil, err
	}

	device.registerResource(s)
	Logger().Debug("shader created", "name", name, "params", len(params), "cbufferSize", cbufferSize)
	return s, nil
}

// Name returns the shader's debug name.
func (s *Shader) Name() string { return s.name }

// Destroy releases the shader. Destroying the device's active sprite
// shader detaches it first.
func (s *Shader) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	s.destroyed = true
	Logger().Debug("shader destroyed", "name", s.name)
	s.device.notifyShaderDestroyed(s)
	if s.program != nil {
		s.program.Destroy()
		s.program = nil
	}
}

// HasParameter reports whether the shader declares a parameter with the
// given name.
func (s *Shader) HasParameter(name string) bool { return s.find(name) != nil }

// find locates a parameter by name. The parameter slice is sorted at
// construction, so lookup is a binary search.
func (s *Shader) find(name string) *parameter {
	i := sort.Search(len(s.params), func(i int) bool { return s.params[i].name >= name })
	if i < len(s.params) && s.params[i].name == name {
		return &s.params[i]
	}
	return nil
}

// verifyUpdatable rejects parameter writes while the shader is active.
func (s *Shader) verifyUpdatable() error {
	if s.inUse {
		return errRuntimef("shader %q: parameters may not be updated while the shader is in use; unset the shader first or update parameters before activating it", s.name)
	}
	return nil
}

// SetFloat sets a float parameter. Writes to undeclared names are no-ops.
func (s *Shader) SetFloat(name string, value float32) error {
	return s.setScalar(name, ParameterFloat, f32Bytes(value))
}

// SetInt sets an int parameter.
func (s *Shader) SetInt(name string, value int32) error {
	return s.setScalar(name, ParameterInt, i32Bytes(value))
}

// SetBool sets a bool parameter. Booleans occupy 4 bytes in the constant
// buffer, 1 meaning true.
func (s *Shader) SetBool(name string, value bool) error {
	return s.setScalar(name, ParameterBool, i32Bytes(b32(value)))
}

// SetVector2 sets a Vector2 parameter.
func (s *Shader) SetVector2(name string, value Vector2) error {
	return s.setScalar(name, ParameterVector2, f32SliceBytes(value.X, value.Y))
}

// SetVector3 sets a Vector3 parameter.
func (s *Shader) SetVector3(name string, value Vector3) error {
	return s.setScalar(name, ParameterVector3, f32SliceBytes(value.X, value.Y, value.Z))
}

// SetVector4 sets a Vector4 parameter.
func (s *Shader) SetVector4(name string, value Vector4) error {
	return s.setScalar(name, ParameterVector4, f32SliceBytes(value.X, value.Y, value.Z, value.W))
}

// SetMatrix sets a Matrix parameter.
func (s *Shader) SetMatrix(name string, value Matrix) error {
	return s.setScalar(name, ParameterMatrix, f32SliceBytes(value[:]...))
}

// SetFloatArray writes values into a float array parameter starting at
// element offset.
func (s *Shader) SetFloatArray(name string, values []float32, offset int) error {
	return s.setArray(name, ParameterFloatArray, len(values), offset, func(dst []byte, i int) {
		copy(dst, f32Bytes(values[i]))
	})
}

// SetIntArray writes values into an int array parameter starting at
// element offset.
func (s *Shader) SetIntArray(name string, values []int32, offset int) error {
	return s.setArray(name, ParameterIntArray, len(values), offset, func(dst []byte, i int) {
		copy(dst, i32Bytes(values[i]))
	})
}

// SetBoolArray writes values into a bool array parameter starting at
// element offset.
func (s *Shader) SetBoolArray(name string, values []bool, offset int) error {
	return s.setArray(name, ParameterBoolArray, len(values), offset, func(dst []byte, i int) {
		copy(dst, i32Bytes(b32(values[i])))
	})
}

// SetVector2Array writes values into a Vector2 array parameter starting at
// element offset.
func (s *Shader) SetVector2Array(name string, values []Vector2, offset int) error {
	return s.setArray(name, ParameterVector2Array, len(values), offset, func(dst []byte, i int) {
		copy(dst, f32SliceBytes(values[i].X, values[i].Y))
	})
}

// SetVector3Array writes values into a Vector3 array parameter starting at
// element offset.
func (s *Shader) SetVector3Array(name string, values []Vector3, offset int) error {
	return s.setArray(name, ParameterVector3Array, len(values), offset, func(dst []byte, i int) {
		copy(dst, f32SliceBytes(values[i].X, values[i].Y, values[i].Z))
	})
}

// SetVector4Array writes values into a Vector4 array parameter starting at
// element offset.
func (s *Shader) SetVector4Array(name string, values []Vector4, offset int) error {
	return s.setArray(name, ParameterVector4Array, len(values), offset, func(dst []byte, i int) {
		copy(dst, f32SliceBytes(values[i].X, values[i].Y, values[i].Z, values[i].W))
	})
}

// SetMatrixArray writes values into a Matrix array parameter starting at
// element offset.
func (s *Shader) SetMatrixArray(name string, values []Matrix, offset int) error {
	return s.setArray(name, ParameterMatrixArray, len(values), offset, func(dst []byte, i int) {
		copy(dst, f32SliceBytes(values[i][:]...))
	})
}

// SetImage assigns an image to an image parameter.
func (s *Shader) SetImage(name string, image *Image) error {
	if err := s.verifyUpdatable(); err != nil {
		return err
	}
	p := s.find(name)
	if p == nil {
		return nil
	}
	if p.typ != ParameterImage {
		return errLogicf("cannot set value of parameter %q (type %v) to an image", name, p.typ)
	}
	if p.image != image {
		p.image = image
		s.dirtyImage[p] = struct{}{}
	}
	return nil
}

// Float reads back a float parameter. Undeclared names read as zero.
func (s *Shader) Float(name string) (float32, error) {
	b, err := s.readScalar(name, ParameterFloat)
	if err != nil || b == nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// Int reads back an int parameter.
func (s *Shader) Int(name string) (int32, error) {
	b, err := s.readScalar(name, ParameterInt)
	if err != nil || b == nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Bool reads back a bool parameter.
func (s *Shader) Bool(name string) (bool, error) {
	b, err := s.readScalar(name, ParameterBool)
	if err != nil || b == nil {
		return false, err
	}
	return binary.LittleEndian.Uint32(b) != 0, nil
}

// Vector2Value reads back a Vector2 parameter.
func (s *Shader) Vector2Value(name string) (Vector2, error) {
	b, err := s.readScalar(name, ParameterVector2)
	if err != nil || b == nil {
		return Vector2{}, err
	}
	f := bytesToF32(b)
	return Vector2{X: f[0], Y: f[1]}, nil
}

// Vector3Value reads back a Vector3 parameter.
func (s *Shader) Vector3Value(name string) (Vector3, error) {
	b, err := s.readScalar(name, ParameterVector3)
	if err != nil || b == nil {
		return Vector3{}, err
	}
	f := bytesToF32(b)
	return Vector3{X: f[0], Y: f[1], Z: f[2]}, nil
}

// Vector4Value reads back a Vector4 parameter.
func (s *Shader) Vector4Value(name string) (Vector4, error) {
	b, err := s.readScalar(name, ParameterVector4)
	if err != nil || b == nil {
		return Vector4{}, err
	}
	f := bytesToF32(b)
	return Vector4{X: f[0], Y: f[1], Z: f[2], W: f[3]}, nil
}

// MatrixValue reads back a Matrix parameter.
func (s *Shader) MatrixValue(name string) (Matrix, error) {
	b, err := s.readScalar(name, ParameterMatrix)
	if err != nil || b == nil {
		return Matrix{}, err
	}
	var m Matrix
	copy(m[:], bytesToF32(b))
	return m, nil
}

// ImageValue reads back an image parameter.
func (s *Shader) ImageValue(name string) (*Image, error) {
	p := s.find(name)
	if p == nil {
		return nil, nil
	}
	if p.typ != ParameterImage {
		return nil, errLogicf("cannot read value of parameter %q (type %v) as an image", name, p.typ)
	}
	return p.image, nil
}

func (s *Shader) setScalar(name string, typ ParameterType, data []byte) error {
	if err := s.verifyUpdatable(); err != nil {
		return err
	}
	p := s.find(name)
	if p == nil {
		return nil
	}
	if p.typ != typ {
		return errLogicf("cannot set value of parameter %q (type %v) to a value of type %v", name, p.typ, typ)
	}
	dst := s.cbuffer[p.offset : p.offset+len(data)]
	if bytes.Equal(dst, data) {
		return nil
	}
	copy(dst, data)
	s.dirtyScalar[p] = struct{}{}
	return nil
}

func (s *Shader) setArray(name string, typ ParameterType, count, offset int, write func(dst []byte, i int)) error {
	if err := s.verifyUpdatable(); err != nil {
		return err
	}
	p := s.find(name)
	if p == nil {
		return nil
	}
	if p.typ != typ {
		return errLogicf("cannot set value of parameter %q (type %v) to a value of type %v", name, p.typ, typ)
	}
	if offset < 0 || offset+count > p.arraySize {
		return errInvalidArgf("parameter %q: element range [%d, %d) exceeds array size %d",
			name, offset, offset+count, p.arraySize)
	}
	stride := arrayStride
	if typ == ParameterMatrixArray {
		stride = 64
	}
	for i := 0; i < count; i++ {
		at := p.offset + (offset+i)*stride
		write(s.cbuffer[at:at+stride], i)
	}
	if count > 0 {
		s.dirtyScalar[p] = struct{}{}
	}
	return nil
}

func (s *Shader) readScalar(name string, typ ParameterType) ([]byte, error) {
	p := s.find(name)
	if p == nil {
		return nil, nil
	}
	if p.typ != typ {
		return nil, errLogicf("cannot read value of parameter %q (type %v) as a value of type %v", name, p.typ, typ)
	}
	size := typ.sizeInBytes(p.arraySize)
	return s.cbuffer[p.offset : p.offset+size], nil
}

// applyDefaults writes declared default values into the constant buffer.
func (s *Shader) applyDefaults(decls []ParameterDecl) error {
	for _, d := range decls {
		if d.Default == nil {
			continue
		}
		var err error
		switch v := d.Default.(type) {
		case float32:
			err = s.SetFloat(d.Name, v)
		case float64:
			err = s.SetFloat(d.Name, float32(v))
		case int32:
			err = s.SetInt(d.Name, v)
		case int:
			err = s.SetInt(d.Name, int32(v))
		case bool:
			err = s.SetBool(d.Name, v)
		case Vector2:
			err = s.SetVector2(d.Name, v)
		case Vector3:
			err = s.SetVector3(d.Name, v)
		case Vector4:
			err = s.SetVector4(d.Name, v)
		case Matrix:
			err = s.SetMatrix(d.Name, v)
		default:
			err = errInvalidArgf("parameter %q: unsupported default value type %T", d.Name, d.Default)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// uniformTypeOf maps a parameter type to the backend upload type.
func uniformTypeOf(t ParameterType) gpu.UniformType {
	switch t.elementType() {
	case ParameterInt, ParameterBool:
		return gpu.UniformInt
	case ParameterVector2:
		return gpu.UniformVec2
	case ParameterVector3:
		return gpu.UniformVec3
	case ParameterVector4:
		return gpu.UniformVec4
	case ParameterMatrix:
		return gpu.UniformMat4
	default:
		return gpu.UniformFloat
	}
}

func b32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func f32Bytes(v float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return b[:]
}

func i32Bytes(v int32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

func f32SliceBytes(vs ...float32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func bytesToF32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
