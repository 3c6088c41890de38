package gpu

import "fmt"

// Enum is a raw driver constant. Values are identical to the OpenGL enumerants so a driver
// backend can pass them through unchanged.
type Enum uint32

// Driver constants used by this package and its callers. Only the subset the engine issues is
// mirrored here.
const (
	None    Enum = 0
	NoError Enum = 0

	InvalidEnum                 Enum = 0x0500
	InvalidValue                Enum = 0x0501
	InvalidOperation            Enum = 0x0502
	StackOverflow               Enum = 0x0503
	StackUnderflow              Enum = 0x0504
	OutOfMemory                 Enum = 0x0505
	InvalidFramebufferOperation Enum = 0x0506
	ContextLost                 Enum = 0x0507

	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893
	StreamDraw         Enum = 0x88E0
	StaticDraw         Enum = 0x88E4
	DynamicDraw        Enum = 0x88E8

	TypeByte          Enum = 0x1400
	TypeUnsignedByte  Enum = 0x1401
	TypeShort         Enum = 0x1402
	TypeUnsignedShort Enum = 0x1403
	TypeInt           Enum = 0x1404
	TypeUnsignedInt   Enum = 0x1405
	TypeFloat         Enum = 0x1406
	TypeHalfFloat     Enum = 0x140B

	TypeUnsignedInt248 Enum = 0x84FA

	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
	GeometryShader Enum = 0x8DD9

	Texture0                Enum = 0x84C0
	Texture2D               Enum = 0x0DE1
	TextureCubeMap          Enum = 0x8513
	TextureCubeMapPositiveX Enum = 0x8515

	TextureMagFilter   Enum = 0x2800
	TextureMinFilter   Enum = 0x2801
	TextureWrapS       Enum = 0x2802
	TextureWrapT       Enum = 0x2803
	TextureWrapR       Enum = 0x8072
	TextureBorderColor Enum = 0x1004
	TextureBaseLevel   Enum = 0x813C
	TextureMaxLevel    Enum = 0x813D

	Nearest              Enum = 0x2600
	Linear               Enum = 0x2601
	NearestMipmapNearest Enum = 0x2700
	LinearMipmapNearest  Enum = 0x2701
	NearestMipmapLinear  Enum = 0x2702
	LinearMipmapLinear   Enum = 0x2703

	Repeat         Enum = 0x2901
	ClampToBorder  Enum = 0x812D
	ClampToEdge    Enum = 0x812F
	MirroredRepeat Enum = 0x8370

	DepthComponent Enum = 0x1902
	Red            Enum = 0x1903
	RGB            Enum = 0x1907
	RGBA           Enum = 0x1908
	RG             Enum = 0x8227
	DepthStencil   Enum = 0x84F9

	RGB8              Enum = 0x8051
	RGBA8             Enum = 0x8058
	DepthComponent24  Enum = 0x81A6
	R8                Enum = 0x8229
	RG8               Enum = 0x822B
	R16F              Enum = 0x822D
	RG16F             Enum = 0x822F
	RGB32F            Enum = 0x8815
	RGBA16F           Enum = 0x881A
	RGB16F            Enum = 0x881B
	Depth24Stencil8   Enum = 0x88F0
	SRGB8             Enum = 0x8C41
	SRGB8Alpha8       Enum = 0x8C43
	DepthComponent32F Enum = 0x8CAC

	FramebufferTarget      Enum = 0x8D40
	ReadFramebuffer        Enum = 0x8CA8
	DrawFramebuffer        Enum = 0x8CA9
	RenderbufferTarget     Enum = 0x8D41
	ColorAttachment0       Enum = 0x8CE0
	DepthAttachment        Enum = 0x8D00
	StencilAttachment      Enum = 0x8D20
	DepthStencilAttachment Enum = 0x821A

	FramebufferUndefined                   Enum = 0x8219
	FramebufferComplete                    Enum = 0x8CD5
	FramebufferIncompleteAttachment        Enum = 0x8CD6
	FramebufferIncompleteMissingAttachment Enum = 0x8CD7
	FramebufferIncompleteDrawBuffer        Enum = 0x8CDB
	FramebufferIncompleteReadBuffer        Enum = 0x8CDC
	FramebufferUnsupported                 Enum = 0x8CDD
	FramebufferIncompleteMultisample       Enum = 0x8D56

	DepthBufferBit   Enum = 0x00000100
	StencilBufferBit Enum = 0x00000400
	ColorBufferBit   Enum = 0x00004000

	CapCullFace               Enum = 0x0B44
	CapDepthTest              Enum = 0x0B71
	CapBlend                  Enum = 0x0BE2
	CapTextureCubeMapSeamless Enum = 0x884F
	CapFramebufferSRGB        Enum = 0x8DB9

	FuncNever    Enum = 0x0200
	FuncLess     Enum = 0x0201
	FuncEqual    Enum = 0x0202
	FuncLequal   Enum = 0x0203
	FuncGreater  Enum = 0x0204
	FuncNotequal Enum = 0x0205
	FuncGequal   Enum = 0x0206
	FuncAlways   Enum = 0x0207

	Front        Enum = 0x0404
	Back         Enum = 0x0405
	FrontAndBack Enum = 0x0408

	Zero             Enum = 0
	One              Enum = 1
	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303

	Points        Enum = 0x0000
	Lines         Enum = 0x0001
	LineStrip     Enum = 0x0003
	Triangles     Enum = 0x0004
	TriangleStrip Enum = 0x0005
	TriangleFan   Enum = 0x0006
)

// MaxTextureUnits is the number of texture units the engine addresses (GL guarantees at least 16
// per stage).
const MaxTextureUnits = 16

// BufferKind distinguishes vertex data buffers from index data buffers.
type BufferKind int

const (
	// BufferKindVertex holds interleaved vertex attributes (GL_ARRAY_BUFFER).
	BufferKindVertex BufferKind = iota

	// BufferKindIndex holds element indices (GL_ELEMENT_ARRAY_BUFFER).
	BufferKindIndex
)

// Usage is the driver usage hint for buffer storage.
type Usage int

const (
	UsageStatic Usage = iota
	UsageDynamic
	UsageStream
)

// ComponentType is the scalar type of a vertex attribute component.
type ComponentType int

const (
	ComponentFloat ComponentType = iota
	ComponentHalfFloat
	ComponentInt
	ComponentUnsignedInt
	ComponentShort
	ComponentUnsignedShort
	ComponentByte
	ComponentUnsignedByte
)

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageGeometry
)

// ClearFlags selects which buffers of the bound framebuffer Clear resets.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

// Capability is a server-side toggle managed through the RenderContext.
type Capability int

const (
	DepthTest Capability = iota
	CullFace
	Blend
	SeamlessCubemap
	FramebufferSRGB
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

// Wrap is a texture coordinate wrapping mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapClampToBorder
	WrapMirroredRepeat
)

// Format is a texture or renderbuffer internal format.
type Format int

const (
	FormatR8 Format = iota
	FormatRG8
	FormatRGB8
	FormatRGBA8
	FormatSRGB8
	FormatSRGB8A8
	FormatR16F
	FormatRG16F
	FormatRGB16F
	FormatRGBA16F
	FormatRGB32F
	FormatDepth24
	FormatDepth32F
	FormatDepth24Stencil8
)

// FormatInfo describes how a Format maps to driver upload parameters.
type FormatInfo struct {
	Name           string
	InternalFormat Enum
	PixelFormat    Enum
	PixelType      Enum
	Channels       int
	BytesPerPixel  int
	Depth          bool
	Stencil        bool
	Float          bool
}

// ── mapping tables ────────────────────────────────────────────────────────────
// Every closed enumeration above maps to its driver constant here and nowhere else.

var bufferTargets = map[BufferKind]Enum{
	BufferKindVertex: ArrayBuffer,
	BufferKindIndex:  ElementArrayBuffer,
}

var usageHints = map[Usage]Enum{
	UsageStatic:  StaticDraw,
	UsageDynamic: DynamicDraw,
	UsageStream:  StreamDraw,
}

var componentTypes = map[ComponentType]struct {
	enum Enum
	size int
}{
	ComponentFloat:         {TypeFloat, 4},
	ComponentHalfFloat:     {TypeHalfFloat, 2},
	ComponentInt:           {TypeInt, 4},
	ComponentUnsignedInt:   {TypeUnsignedInt, 4},
	ComponentShort:         {TypeShort, 2},
	ComponentUnsignedShort: {TypeUnsignedShort, 2},
	ComponentByte:          {TypeByte, 1},
	ComponentUnsignedByte:  {TypeUnsignedByte, 1},
}

var shaderStages = map[ShaderStage]struct {
	enum Enum
	name string
}{
	StageVertex:   {VertexShader, "Vertex"},
	StageFragment: {FragmentShader, "Fragment"},
	StageGeometry: {GeometryShader, "Geometry"},
}

var capabilities = map[Capability]Enum{
	DepthTest:       CapDepthTest,
	CullFace:        CapCullFace,
	Blend:           CapBlend,
	SeamlessCubemap: CapTextureCubeMapSeamless,
	FramebufferSRGB: CapFramebufferSRGB,
}

var filters = map[Filter]Enum{
	FilterNearest:              Nearest,
	FilterLinear:               Linear,
	FilterNearestMipmapNearest: NearestMipmapNearest,
	FilterLinearMipmapNearest:  LinearMipmapNearest,
	FilterNearestMipmapLinear:  NearestMipmapLinear,
	FilterLinearMipmapLinear:   LinearMipmapLinear,
}

var wraps = map[Wrap]Enum{
	WrapRepeat:         Repeat,
	WrapClampToEdge:    ClampToEdge,
	WrapClampToBorder:  ClampToBorder,
	WrapMirroredRepeat: MirroredRepeat,
}

var formats = map[Format]FormatInfo{
	FormatR8:              {Name: "R8", InternalFormat: R8, PixelFormat: Red, PixelType: TypeUnsignedByte, Channels: 1, BytesPerPixel: 1},
	FormatRG8:             {Name: "RG8", InternalFormat: RG8, PixelFormat: RG, PixelType: TypeUnsignedByte, Channels: 2, BytesPerPixel: 2},
	FormatRGB8:            {Name: "RGB8", InternalFormat: RGB8, PixelFormat: RGB, PixelType: TypeUnsignedByte, Channels: 3, BytesPerPixel: 3},
	FormatRGBA8:           {Name: "RGBA8", InternalFormat: RGBA8, PixelFormat: RGBA, PixelType: TypeUnsignedByte, Channels: 4, BytesPerPixel: 4},
	FormatSRGB8:           {Name: "SRGB8", InternalFormat: SRGB8, PixelFormat: RGB, PixelType: TypeUnsignedByte, Channels: 3, BytesPerPixel: 3},
	FormatSRGB8A8:         {Name: "SRGB8_ALPHA8", InternalFormat: SRGB8Alpha8, PixelFormat: RGBA, PixelType: TypeUnsignedByte, Channels: 4, BytesPerPixel: 4},
	FormatR16F:            {Name: "R16F", InternalFormat: R16F, PixelFormat: Red, PixelType: TypeFloat, Channels: 1, BytesPerPixel: 4, Float: true},
	FormatRG16F:           {Name: "RG16F", InternalFormat: RG16F, PixelFormat: RG, PixelType: TypeFloat, Channels: 2, BytesPerPixel: 8, Float: true},
	FormatRGB16F:          {Name: "RGB16F", InternalFormat: RGB16F, PixelFormat: RGB, PixelType: TypeFloat, Channels: 3, BytesPerPixel: 12, Float: true},
	FormatRGBA16F:         {Name: "RGBA16F", InternalFormat: RGBA16F, PixelFormat: RGBA, PixelType: TypeFloat, Channels: 4, BytesPerPixel: 16, Float: true},
	FormatRGB32F:          {Name: "RGB32F", InternalFormat: RGB32F, PixelFormat: RGB, PixelType: TypeFloat, Channels: 3, BytesPerPixel: 12, Float: true},
	FormatDepth24:         {Name: "DEPTH_COMPONENT24", InternalFormat: DepthComponent24, PixelFormat: DepthComponent, PixelType: TypeFloat, Channels: 1, BytesPerPixel: 4, Depth: true},
	FormatDepth32F:        {Name: "DEPTH_COMPONENT32F", InternalFormat: DepthComponent32F, PixelFormat: DepthComponent, PixelType: TypeFloat, Channels: 1, BytesPerPixel: 4, Depth: true, Float: true},
	FormatDepth24Stencil8: {Name: "DEPTH24_STENCIL8", InternalFormat: Depth24Stencil8, PixelFormat: DepthStencil, PixelType: TypeUnsignedInt248, Channels: 1, BytesPerPixel: 4, Depth: true, Stencil: true},
}

// Target returns the buffer binding target for the kind.
func (k BufferKind) Target() Enum { return bufferTargets[k] }

func (k BufferKind) String() string {
	if k == BufferKindIndex {
		return "index"
	}
	return "vertex"
}

// Enum returns the driver usage hint.
func (u Usage) Enum() Enum { return usageHints[u] }

// Enum returns the driver type constant for the component type.
func (c ComponentType) Enum() Enum { return componentTypes[c].enum }

// Size returns the byte size of a single component.
func (c ComponentType) Size() int { return componentTypes[c].size }

// Enum returns the driver shader type constant.
func (s ShaderStage) Enum() Enum { return shaderStages[s].enum }

func (s ShaderStage) String() string {
	if info, ok := shaderStages[s]; ok {
		return info.name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Enum returns the driver capability constant.
func (c Capability) Enum() Enum { return capabilities[c] }

// Mask converts clear flags into the driver clear bitmask.
func (f ClearFlags) Mask() Enum {
	var mask Enum
	if f&ClearColor != 0 {
		mask |= ColorBufferBit
	}
	if f&ClearDepth != 0 {
		mask |= DepthBufferBit
	}
	if f&ClearStencil != 0 {
		mask |= StencilBufferBit
	}
	return mask
}

// Enum returns the driver filter constant.
func (f Filter) Enum() Enum { return filters[f] }

// UsesMipmaps reports whether the filter samples across mip levels.
func (f Filter) UsesMipmaps() bool { return f >= FilterNearestMipmapNearest }

// Enum returns the driver wrap constant.
func (w Wrap) Enum() Enum { return wraps[w] }

// Info returns the upload description of the format.
func (f Format) Info() FormatInfo { return formats[f] }

// IsDepth reports whether the format holds depth (and optionally stencil) data.
func (f Format) IsDepth() bool { return formats[f].Depth }

func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.Name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// IsDepthInternalFormat reports whether a raw internal format constant is a depth format.
// Drivers that simulate completeness use it to classify attachments.
func IsDepthInternalFormat(e Enum) bool {
	for _, info := range formats {
		if info.InternalFormat == e {
			return info.Depth
		}
	}
	return e == DepthComponent
}
