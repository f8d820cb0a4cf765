package renderer

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// meshBuffer is an uploaded vertex buffer with its vertex count.
type meshBuffer struct {
	buffer *wgpu.Buffer
	count  uint32
}

// gpuTexture is a sampled texture and the bind group exposing it.
type gpuTexture struct {
	texture       *wgpu.Texture
	view          *wgpu.TextureView
	group         *wgpu.BindGroup
	width, height uint32
}

func (t *gpuTexture) release() {
	if t == nil {
		return
	}
	if t.group != nil {
		t.group.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount

	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	uniformLayout *wgpu.BindGroupLayout
	textureLayout *wgpu.BindGroupLayout

	pipelines       map[scene.DrawKind]*wgpu.RenderPipeline
	overlayPipeline *wgpu.RenderPipeline

	cameraBuffer *wgpu.Buffer
	drawBuffer   *wgpu.Buffer
	drawCapacity int
	uniformGroup *wgpu.BindGroup

	meshes map[scene.DrawKind]meshBuffer

	mapSamplerData common.SamplerStagingData
	mapSampler     *wgpu.Sampler
	overlaySampler *wgpu.Sampler
	mapTextures    map[int]*gpuTexture
	fallbackMap    *gpuTexture
	overlay        *gpuTexture

	// Frame state between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// ConfigureSurface configures the surface and recreates the MSAA and depth targets.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if a render target could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// CreatePipelines builds the bind group layouts, the map, solid, wire and overlay
	// pipelines, the uniform buffers and the static meshes. Requires a configured surface.
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	CreatePipelines() error

	// CreateMapTexture uploads a map slot and its bind group.
	//
	// Parameters:
	//   - index: the texture set slot
	//   - staging: decoded RGBA pixels
	//
	// Returns:
	//   - error: an error if texture creation fails
	CreateMapTexture(index int, staging common.TextureStagingData) error

	// HasMapTexture reports whether a map slot has been uploaded.
	HasMapTexture(index int) bool

	// WriteOverlay uploads the overlay image, recreating the texture when its size changes.
	//
	// Parameters:
	//   - img: the overlay layer as premultiplied RGBA rows, top row first
	//
	// Returns:
	//   - error: an error if texture creation fails
	WriteOverlay(img *image.RGBA) error

	// WriteUniforms writes the camera uniform and count draw uniforms laid out at drawUniformStride,
	// growing the draw buffer when needed.
	//
	// Returns:
	//   - error: an error if the draw buffer could not be grown
	WriteUniforms(camera, draws []byte, count int) error

	// BeginFrame acquires the next swapchain texture and begins the main render pass.
	//
	// Parameters:
	//   - clear: the background color
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame(clear common.Color) error

	// Draw encodes one draw item.
	//
	// Parameters:
	//   - kind: selects the pipeline and mesh
	//   - slot: the item's index in the uniforms written by WriteUniforms
	//   - mapIndex: the map slot bound for DrawMap, or -1 for the fallback texture
	Draw(kind scene.DrawKind, slot, mapIndex int)

	// DrawOverlay composites the overlay texture over the frame.
	DrawOverlay()

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Release frees every GPU object.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, mapSampler common.SamplerStagingData) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeFifo,
		sampleCount:    sampleCount,
		pipelines:      make(map[scene.DrawKind]*wgpu.RenderPipeline, 3),
		meshes:         make(map[scene.DrawKind]meshBuffer, 3),
		mapTextures:    make(map[int]*gpuTexture),
		mapSamplerData: mapSampler,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode.wgpuPresentMode()
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return fmt.Errorf("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("failed to create msaa texture: %w", err)
		}
		b.msaaTexture = tex
		if b.msaaTextureView, err = tex.CreateView(nil); err != nil {
			return fmt.Errorf("failed to create msaa view: %w", err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	b.depthTexture = depth
	if b.depthTextureView, err = depth.CreateView(nil); err != nil {
		return fmt.Errorf("failed to create depth view: %w", err)
	}

	// View is the MSAA texture with the swapchain view as ResolveTarget, or the swapchain view
	// itself when MSAA is off. Both swapchain slots are filled in per frame.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

// releaseTargets frees the MSAA and depth targets.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) CreatePipelines() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	b.uniformLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Uniform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   uint64((&GPUDrawUniform{}).Size()),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform layout: %w", err)
	}

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create texture layout: %w", err)
	}

	specs := []pipelineSpec{
		{key: "map", source: mapShaderSource, groups: []*wgpu.BindGroupLayout{b.uniformLayout, b.textureLayout}, topology: wgpu.PrimitiveTopologyTriangleList, depthWrite: true, vertices: true},
		{key: "solid", source: solidShaderSource, groups: []*wgpu.BindGroupLayout{b.uniformLayout}, topology: wgpu.PrimitiveTopologyTriangleList, depthWrite: true, vertices: true},
		{key: "wire", source: solidShaderSource, groups: []*wgpu.BindGroupLayout{b.uniformLayout}, topology: wgpu.PrimitiveTopologyLineList, depthWrite: false, vertices: true},
		{key: "overlay", source: overlayShaderSource, groups: []*wgpu.BindGroupLayout{b.textureLayout}, topology: wgpu.PrimitiveTopologyTriangleList, blend: true},
	}
	created := make([]*wgpu.RenderPipeline, len(specs))
	for i, spec := range specs {
		if created[i], err = b.createRenderPipeline(spec); err != nil {
			return fmt.Errorf("failed to create %s pipeline: %w", spec.key, err)
		}
	}
	b.pipelines[scene.DrawMap] = created[0]
	b.pipelines[scene.DrawSolid] = created[1]
	b.pipelines[scene.DrawWire] = created[2]
	b.overlayPipeline = created[3]

	for kind, vertices := range map[scene.DrawKind][]Vertex{
		scene.DrawMap:   QuadVertices(),
		scene.DrawSolid: CubeVertices(),
		scene.DrawWire:  CubeEdgeVertices(),
	} {
		buf, err := b.createBuffer("Mesh Vertex Buffer", common.SliceToBytes(vertices), wgpu.BufferUsageVertex)
		if err != nil {
			return err
		}
		b.meshes[kind] = meshBuffer{buffer: buf, count: uint32(len(vertices))}
	}

	if b.cameraBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  80,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("failed to create camera buffer: %w", err)
	}
	if err := b.growDrawBuffer(16); err != nil {
		return err
	}

	if b.mapSampler, err = b.createSampler("Map Sampler", b.mapSamplerData); err != nil {
		return err
	}
	if b.overlaySampler, err = b.createSampler("Overlay Sampler", common.SamplerStagingData{
		MagFilter: wgpu.FilterModeNearest,
		MinFilter: wgpu.FilterModeNearest,
	}); err != nil {
		return err
	}

	// A 1x1 mid-grey texture stands in for map slots that failed to decode.
	b.fallbackMap, err = b.createTexture("Fallback Map", wgpu.TextureFormatRGBA8UnormSrgb, b.mapSampler,
		common.TextureStagingData{Pixels: []byte{128, 128, 128, 255}, Width: 1, Height: 1})
	return err
}

// pipelineSpec describes one of the fixed render pipelines.
type pipelineSpec struct {
	key        string
	source     string
	groups     []*wgpu.BindGroupLayout
	topology   wgpu.PrimitiveTopology
	depthWrite bool
	blend      bool
	vertices   bool
}

// createRenderPipeline compiles a shader with vs_main/fs_main entry points into a pipeline
// targeting the surface format, sample count and depth format.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createRenderPipeline(spec pipelineSpec) (*wgpu.RenderPipeline, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: spec.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: spec.source,
		},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            spec.key,
		BindGroupLayouts: spec.groups,
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	var buffers []wgpu.VertexBufferLayout
	if spec.vertices {
		buffers = []wgpu.VertexBufferLayout{{
			ArrayStride: VertexStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			},
		}}
	}

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	depthCompare := wgpu.CompareFunctionLess
	if spec.blend {
		// The overlay layer holds premultiplied alpha and ignores depth.
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
		depthCompare = wgpu.CompareFunctionAlways
	}

	return b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  spec.key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  spec.topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: spec.depthWrite,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
}

// createBuffer creates a buffer of the given usage and fills it.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// createSampler creates a sampler, filling zero fields with linear clamp-to-edge defaults.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createSampler(label string, s common.SamplerStagingData) (*wgpu.Sampler, error) {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(s.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return samp, nil
}

// createTexture uploads RGBA pixels and binds them with a sampler in the texture layout.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createTexture(label string, format wgpu.TextureFormat, sampler *wgpu.Sampler, staging common.TextureStagingData) (*gpuTexture, error) {
	size := wgpu.Extent3D{Width: staging.Width, Height: staging.Height, DepthOrArrayLayers: 1}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s texture: %w", label, err)
	}
	t := &gpuTexture{texture: tex, width: staging.Width, height: staging.Height}

	b.writeTexture(t, staging.Pixels, staging.Width*4)

	if t.view, err = tex.CreateView(nil); err != nil {
		t.release()
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	t.group, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.view},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("failed to create %s bind group: %w", label, err)
	}
	return t, nil
}

// writeTexture replaces the full contents of a texture.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) writeTexture(t *gpuTexture, pixels []byte, bytesPerRow uint32) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: t.height,
		},
		&wgpu.Extent3D{
			Width:              t.width,
			Height:             t.height,
			DepthOrArrayLayers: 1,
		},
	)
}

// growDrawBuffer recreates the draw uniform buffer and the uniform bind group with room for n draws.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) growDrawBuffer(n int) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Draw Uniform Buffer",
		Size:  uint64(n * drawUniformStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create draw buffer: %w", err)
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Uniform Bind Group",
		Layout: b.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: buf, Offset: 0, Size: uint64((&GPUDrawUniform{}).Size())},
		},
	})
	if err != nil {
		buf.Release()
		return fmt.Errorf("failed to create uniform bind group: %w", err)
	}

	if b.uniformGroup != nil {
		b.uniformGroup.Release()
	}
	if b.drawBuffer != nil {
		b.drawBuffer.Release()
	}
	b.drawBuffer, b.uniformGroup, b.drawCapacity = buf, group, n
	return nil
}

func (b *wgpuRendererBackendImpl) CreateMapTexture(index int, staging common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.createTexture(fmt.Sprintf("Map %d", index), wgpu.TextureFormatRGBA8UnormSrgb, b.mapSampler, staging)
	if err != nil {
		return err
	}
	b.mapTextures[index].release()
	b.mapTextures[index] = t
	return nil
}

func (b *wgpuRendererBackendImpl) HasMapTexture(index int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.mapTextures[index]
	return ok
}

func (b *wgpuRendererBackendImpl) WriteOverlay(img *image.RGBA) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, h := uint32(img.Bounds().Dx()), uint32(img.Bounds().Dy())
	if w == 0 || h == 0 {
		return nil
	}
	if b.overlay != nil && b.overlay.width == w && b.overlay.height == h {
		b.writeTexture(b.overlay, img.Pix, uint32(img.Stride))
		return nil
	}

	t, err := b.createTexture("Overlay", wgpu.TextureFormatRGBA8Unorm, b.overlaySampler,
		common.TextureStagingData{Pixels: img.Pix, Width: w, Height: h})
	if err != nil {
		return err
	}
	b.overlay.release()
	b.overlay = t
	return nil
}

func (b *wgpuRendererBackendImpl) WriteUniforms(camera, draws []byte, count int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if count > b.drawCapacity {
		if err := b.growDrawBuffer(max(count, b.drawCapacity*2)); err != nil {
			return err
		}
	}
	b.queue.WriteBuffer(b.cameraBuffer, 0, camera)
	if len(draws) > 0 {
		b.queue.WriteBuffer(b.drawBuffer, 0, draws)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	if b.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	attachment.ClearValue = wgpu.Color{
		R: float64(clear[0]),
		G: float64(clear[1]),
		B: float64(clear[2]),
		A: float64(clear[3]),
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(kind scene.DrawKind, slot, mapIndex int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || slot >= b.drawCapacity {
		return
	}
	pipeline, ok := b.pipelines[kind]
	if !ok {
		return
	}
	mesh := b.meshes[kind]

	b.framePass.SetPipeline(pipeline)
	b.framePass.SetBindGroup(0, b.uniformGroup, []uint32{uint32(slot * drawUniformStride)})
	if kind == scene.DrawMap {
		tex, ok := b.mapTextures[mapIndex]
		if !ok {
			tex = b.fallbackMap
		}
		b.framePass.SetBindGroup(1, tex.group, nil)
	}
	b.framePass.SetVertexBuffer(0, mesh.buffer, 0, wgpu.WholeSize)
	b.framePass.Draw(mesh.count, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawOverlay() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || b.overlay == nil {
		return
	}
	b.framePass.SetPipeline(b.overlayPipeline)
	b.framePass.SetBindGroup(0, b.overlay.group, nil)
	b.framePass.Draw(3, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.frameView.Release()
		b.frameView = nil
		b.frameSurface.Release()
		b.frameSurface = nil
		return
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.mapTextures {
		t.release()
		delete(b.mapTextures, i)
	}
	b.fallbackMap.release()
	b.overlay.release()
	b.fallbackMap, b.overlay = nil, nil

	for kind, m := range b.meshes {
		m.buffer.Release()
		delete(b.meshes, kind)
	}
	for kind, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, kind)
	}
	if b.overlayPipeline != nil {
		b.overlayPipeline.Release()
		b.overlayPipeline = nil
	}
	if b.uniformGroup != nil {
		b.uniformGroup.Release()
		b.uniformGroup = nil
	}
	for _, buf := range []*wgpu.Buffer{b.drawBuffer, b.cameraBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	b.drawBuffer, b.cameraBuffer = nil, nil
	for _, s := range []*wgpu.Sampler{b.mapSampler, b.overlaySampler} {
		if s != nil {
			s.Release()
		}
	}
	b.mapSampler, b.overlaySampler = nil, nil
	for _, l := range []*wgpu.BindGroupLayout{b.uniformLayout, b.textureLayout} {
		if l != nil {
			l.Release()
		}
	}
	b.uniformLayout, b.textureLayout = nil, nil
	b.releaseTargets()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
