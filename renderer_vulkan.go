// renderer_vulkan.go - the Vulkan device-group renderer: one logical
// VkDevice spanning every physical device in a device group, driven by
// vkCmdSetDeviceMask per draw so GPUScheduler's owner decisions become
// real device routing (spec.md §4.3).
//
// Adapted from voodoo_vulkan.go's VulkanBackend: same instance/device/
// command-pool/offscreen-image/render-pass/pipeline/command-buffer/fence
// construction sequence, generalized from a single physical device to a
// device group and from triangle-rasterizer state to damage-plan tiles.
package main

import (
	"fmt"
	"time"
	"unsafe"

	vk "github.com/goki/vulkan"
)

type vulkanVertex struct {
	Position [2]float32
	Color    [4]float32
}

// VulkanRenderer drives the device-group path: offscreen render target,
// one command buffer re-recorded per frame, GPUScheduler deciding which
// physical device mask each draw call targets.
type VulkanRenderer struct {
	tag     string
	display string

	instance       vk.Instance
	physicalDevices []vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32

	width, height int
	colorImage       vk.Image
	colorImageMemory vk.DeviceMemory
	colorImageView   vk.ImageView

	renderPass  vk.RenderPass
	framebuffer vk.Framebuffer

	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
	vertShader     vk.ShaderModule
	fragShader     vk.ShaderModule

	vertexBuffer       vk.Buffer
	vertexBufferMemory vk.DeviceMemory
	vertexBufferSize   vk.DeviceSize

	commandPool   vk.CommandPool
	commandBuffer vk.CommandBuffer
	fence         vk.Fence

	queryPool           vk.QueryPool
	timestampsSupported bool
	timestampPeriod     float64

	scheduler *GPUScheduler
	tracker   *HashTracker

	frameStartNanos int64
	drawCallCount   int
}

func NewVulkanRenderer(display, tag string) (*VulkanRenderer, error) {
	return &VulkanRenderer{display: display, tag: tag, width: 1280, height: 720}, nil
}

func (r *VulkanRenderer) CapabilityTag() string { return r.tag }
func (r *VulkanRenderer) WorkUnitCount() int    { return GridRows * GridCols }
func (r *VulkanRenderer) Tracker() *HashTracker { return r.tracker }

func (r *VulkanRenderer) Init(cfg *Config) error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return NewBenchError(KindGpuInit, "loading Vulkan library", err)
	}
	if err := vk.Init(); err != nil {
		return NewBenchError(KindGpuInit, "initializing Vulkan loader", err)
	}
	if err := r.createInstance(); err != nil {
		return NewBenchError(KindGpuInit, "creating Vulkan instance", err)
	}
	if err := r.selectDeviceGroup(); err != nil {
		return NewBenchError(KindGpuInit, "selecting device group", err)
	}
	if err := r.createDevice(); err != nil {
		return NewBenchError(KindGpuInit, "creating logical device", err)
	}
	if err := r.createCommandPool(); err != nil {
		return NewBenchError(KindGpuInit, "creating command pool", err)
	}
	if err := r.createOffscreenTarget(); err != nil {
		return NewBenchError(KindGpuInit, "creating offscreen target", err)
	}
	if err := r.createRenderPass(); err != nil {
		return NewBenchError(KindGpuInit, "creating render pass", err)
	}
	if err := r.createFramebuffer(); err != nil {
		return NewBenchError(KindGpuInit, "creating framebuffer", err)
	}
	if err := r.createPipeline(); err != nil {
		return NewBenchError(KindGpuInit, "creating pipeline", err)
	}
	if err := r.createVertexBuffer(); err != nil {
		return NewBenchError(KindGpuInit, "creating vertex buffer", err)
	}
	if err := r.createCommandBuffer(); err != nil {
		return NewBenchError(KindGpuInit, "creating command buffer", err)
	}
	if err := r.createSyncObjects(); err != nil {
		return NewBenchError(KindGpuInit, "creating sync objects", err)
	}

	r.scheduler = NewGPUScheduler(len(r.physicalDevices))
	r.tracker = NewHashTracker(hashKeyForCapability("vulkan"), pickReportMode(cfg.HashMode), cfg.HashMode != HashModeNone)
	return nil
}

func vkSafeString(s string) string { return s + "\x00" }

func (r *VulkanRenderer) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   vkSafeString("driverbench"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        vkSafeString("driverbench"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	r.instance = instance
	vk.InitInstance(instance)
	return nil
}

// selectDeviceGroup enumerates physical device groups and keeps every
// physical device in the first (largest) group, per spec.md §4.3's "one
// logical device spanning the group" requirement.
func (r *VulkanRenderer) selectDeviceGroup() error {
	var groupCount uint32
	vk.EnumeratePhysicalDeviceGroups(r.instance, &groupCount, nil)
	if groupCount == 0 {
		return fmt.Errorf("no Vulkan physical device groups found")
	}
	groups := make([]vk.PhysicalDeviceGroupProperties, groupCount)
	for i := range groups {
		groups[i].SType = vk.StructureTypePhysicalDeviceGroupProperties
	}
	vk.EnumeratePhysicalDeviceGroups(r.instance, &groupCount, groups)

	best := groups[0]
	for _, g := range groups[1:] {
		g.Deref()
		best.Deref()
		if g.PhysicalDeviceCount > best.PhysicalDeviceCount {
			best = g
		}
	}
	best.Deref()
	n := int(best.PhysicalDeviceCount)
	if n > MaxSchedulerGPUs {
		n = MaxSchedulerGPUs
	}
	r.physicalDevices = make([]vk.PhysicalDevice, n)
	copy(r.physicalDevices, best.PhysicalDevices[:n])

	primary := r.physicalDevices[0]
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(primary, &queueFamilyCount, nil)
	families := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(primary, &queueFamilyCount, families)
	for i, qf := range families {
		qf.Deref()
		if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			r.queueFamily = uint32(i)
			break
		}
	}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(primary, &props)
	props.Deref()
	props.Limits.Deref()
	r.timestampPeriod = float64(props.Limits.TimestampPeriod)
	r.timestampsSupported = families[r.queueFamily].TimestampValidBits > 0
	return nil
}

func (r *VulkanRenderer) createDevice() error {
	queuePriority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: r.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{queuePriority},
	}

	deviceGroupInfo := vk.DeviceGroupDeviceCreateInfo{
		SType:               vk.StructureTypeDeviceGroupDeviceCreateInfo,
		PhysicalDeviceCount: uint32(len(r.physicalDevices)),
		PPhysicalDevices:    r.physicalDevices,
	}

	createInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		PNext:                unsafe.Pointer(&deviceGroupInfo),
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}

	var device vk.Device
	if res := vk.CreateDevice(r.physicalDevices[0], &createInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	r.device = device

	var queue vk.Queue
	vk.GetDeviceQueue(device, r.queueFamily, 0, &queue)
	r.queue = queue
	return nil
}

func (r *VulkanRenderer) createCommandPool() error {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: r.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(r.device, &info, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed: %d", res)
	}
	r.commandPool = pool
	return nil
}

func (r *VulkanRenderer) findMemoryType(typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(r.physicalDevices[0], &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if typeBits&(1<<i) != 0 && memProps.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable memory type")
}

func (r *VulkanRenderer) createOffscreenTarget() error {
	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent:    vk.Extent3D{Width: uint32(r.width), Height: uint32(r.height), Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var img vk.Image
	if res := vk.CreateImage(r.device, &info, nil, &img); res != vk.Success {
		return fmt.Errorf("vkCreateImage failed: %d", res)
	}
	r.colorImage = img

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(r.device, img, &memReqs)
	memReqs.Deref()
	memType, err := r.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{SType: vk.StructureTypeMemoryAllocateInfo, AllocationSize: memReqs.Size, MemoryTypeIndex: memType}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(r.device, &allocInfo, nil, &mem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory failed: %d", res)
	}
	r.colorImageMemory = mem
	vk.BindImageMemory(r.device, img, mem, 0)

	viewInfo := vk.ImageViewCreateInfo{
		SType: vk.StructureTypeImageViewCreateInfo, Image: img, ViewType: vk.ImageViewType2d, Format: vk.FormatR8g8b8a8Unorm,
		SubresourceRange: vk.ImageSubresourceRange{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: 1, LayerCount: 1},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(r.device, &viewInfo, nil, &view); res != vk.Success {
		return fmt.Errorf("vkCreateImageView failed: %d", res)
	}
	r.colorImageView = view
	return nil
}

func (r *VulkanRenderer) createRenderPass() error {
	colorAttachment := vk.AttachmentDescription{
		Format: vk.FormatR8g8b8a8Unorm, Samples: vk.SampleCount1Bit,
		LoadOp: vk.AttachmentLoadOpClear, StoreOp: vk.AttachmentStoreOpStore,
		StencilLoadOp: vk.AttachmentLoadOpDontCare, StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout: vk.ImageLayoutUndefined, FinalLayout: vk.ImageLayoutTransferSrcOptimal,
	}
	colorRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint: vk.PipelineBindPointGraphics, ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{colorRef},
	}
	info := vk.RenderPassCreateInfo{
		SType: vk.StructureTypeRenderPassCreateInfo, AttachmentCount: 1,
		PAttachments: []vk.AttachmentDescription{colorAttachment}, SubpassCount: 1,
		PSubpasses: []vk.SubpassDescription{subpass},
	}
	var pass vk.RenderPass
	if res := vk.CreateRenderPass(r.device, &info, nil, &pass); res != vk.Success {
		return fmt.Errorf("vkCreateRenderPass failed: %d", res)
	}
	r.renderPass = pass
	return nil
}

func (r *VulkanRenderer) createFramebuffer() error {
	info := vk.FramebufferCreateInfo{
		SType: vk.StructureTypeFramebufferCreateInfo, RenderPass: r.renderPass,
		AttachmentCount: 1, PAttachments: []vk.ImageView{r.colorImageView},
		Width: uint32(r.width), Height: uint32(r.height), Layers: 1,
	}
	var fb vk.Framebuffer
	if res := vk.CreateFramebuffer(r.device, &info, nil, &fb); res != vk.Success {
		return fmt.Errorf("vkCreateFramebuffer failed: %d", res)
	}
	r.framebuffer = fb
	return nil
}

func (r *VulkanRenderer) createPipeline() error {
	// SPIR-V compilation from the GLSL sources in shaders/ happens at build
	// time (glslangValidator); ReadShaderSource reads the compiled output.
	vertSrc, err := ReadShaderSource("shaders/driverbench.vert.spv")
	if err != nil {
		return err
	}
	fragSrc, err := ReadShaderSource("shaders/driverbench.frag.spv")
	if err != nil {
		return err
	}
	vertModule, err := r.createShaderModule([]byte(vertSrc))
	if err != nil {
		return err
	}
	r.vertShader = vertModule
	fragModule, err := r.createShaderModule([]byte(fragSrc))
	if err != nil {
		return err
	}
	r.fragShader = fragModule

	layoutInfo := vk.PipelineLayoutCreateInfo{SType: vk.StructureTypePipelineLayoutCreateInfo}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(r.device, &layoutInfo, nil, &layout); res != vk.Success {
		return fmt.Errorf("vkCreatePipelineLayout failed: %d", res)
	}
	r.pipelineLayout = layout

	shaderStages := []vk.PipelineShaderStageCreateInfo{
		{SType: vk.StructureTypePipelineShaderStageCreateInfo, Stage: vk.ShaderStageVertexBit, Module: vertModule, PName: vkSafeString("main")},
		{SType: vk.StructureTypePipelineShaderStageCreateInfo, Stage: vk.ShaderStageFragmentBit, Module: fragModule, PName: vkSafeString("main")},
	}
	binding := vk.VertexInputBindingDescription{Binding: 0, Stride: uint32(unsafe.Sizeof(vulkanVertex{})), InputRate: vk.VertexInputRateVertex}
	attrs := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(vulkanVertex{}.Color))},
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount: 1, PVertexBindingDescriptions: []vk.VertexInputBindingDescription{binding},
		VertexAttributeDescriptionCount: uint32(len(attrs)), PVertexAttributeDescriptions: attrs,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{SType: vk.StructureTypePipelineInputAssemblyStateCreateInfo, Topology: vk.PrimitiveTopologyTriangleList}
	viewport := vk.Viewport{Width: float32(r.width), Height: float32(r.height), MaxDepth: 1}
	scissor := vk.Rect2D{Extent: vk.Extent2D{Width: uint32(r.width), Height: uint32(r.height)}}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType: vk.StructureTypePipelineViewportStateCreateInfo, ViewportCount: 1, PViewports: []vk.Viewport{viewport},
		ScissorCount: 1, PScissors: []vk.Rect2D{scissor},
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType: vk.StructureTypePipelineRasterizationStateCreateInfo, PolygonMode: vk.PolygonModeFill,
		CullMode: vk.CullModeFlags(vk.CullModeNone), FrontFace: vk.FrontFaceCounterClockwise, LineWidth: 1.0,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{SType: vk.StructureTypePipelineMultisampleStateCreateInfo, RasterizationSamples: vk.SampleCount1Bit, MinSampleShading: 1.0}
	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType: vk.StructureTypePipelineColorBlendStateCreateInfo, AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType: vk.StructureTypeGraphicsPipelineCreateInfo, StageCount: uint32(len(shaderStages)), PStages: shaderStages,
		PVertexInputState: &vertexInput, PInputAssemblyState: &inputAssembly, PViewportState: &viewportState,
		PRasterizationState: &rasterizer, PMultisampleState: &multisample, PColorBlendState: &colorBlend,
		Layout: layout, RenderPass: r.renderPass, Subpass: 0,
	}
	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(r.device, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines); res != vk.Success {
		return fmt.Errorf("vkCreateGraphicsPipelines failed: %d", res)
	}
	r.pipeline = pipelines[0]
	return nil
}

func (r *VulkanRenderer) createShaderModule(spirv []byte) (vk.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(spirv)),
		PCode:    (*uint32)(unsafe.Pointer(&spirv[0])),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(r.device, &info, nil, &module); res != vk.Success {
		return 0, fmt.Errorf("vkCreateShaderModule failed: %d", res)
	}
	return module, nil
}

// maxVerticesPerFrame bounds the dynamic vertex buffer: a full FullClear
// plus every tile in the grid dirtying in one frame, times 6 verts/quad.
const maxVerticesPerFrame = (1 + BandCount + GridRows + GridRows*GridCols) * 6

func (r *VulkanRenderer) createVertexBuffer() error {
	size := vk.DeviceSize(maxVerticesPerFrame * int(unsafe.Sizeof(vulkanVertex{})))
	info := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo, Size: size,
		Usage: vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if res := vk.CreateBuffer(r.device, &info, nil, &buf); res != vk.Success {
		return fmt.Errorf("vkCreateBuffer failed: %d", res)
	}
	r.vertexBuffer = buf
	r.vertexBufferSize = size

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(r.device, buf, &memReqs)
	memReqs.Deref()
	memType, err := r.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{SType: vk.StructureTypeMemoryAllocateInfo, AllocationSize: memReqs.Size, MemoryTypeIndex: memType}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(r.device, &allocInfo, nil, &mem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory failed: %d", res)
	}
	r.vertexBufferMemory = mem
	vk.BindBufferMemory(r.device, buf, mem, 0)
	return nil
}

func (r *VulkanRenderer) createCommandBuffer() error {
	info := vk.CommandBufferAllocateInfo{
		SType: vk.StructureTypeCommandBufferAllocateInfo, CommandPool: r.commandPool,
		Level: vk.CommandBufferLevelPrimary, CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(r.device, &info, buffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers failed: %d", res)
	}
	r.commandBuffer = buffers[0]
	return nil
}

func (r *VulkanRenderer) createSyncObjects() error {
	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo, Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit)}
	var fence vk.Fence
	if res := vk.CreateFence(r.device, &fenceInfo, nil, &fence); res != vk.Success {
		return fmt.Errorf("vkCreateFence failed: %d", res)
	}
	r.fence = fence

	if r.timestampsSupported {
		// Two timestamp slots per device-group member (spec.md §4.3: "each
		// owner gets two slots (2*owner, 2*owner+1)"), not a fixed pair —
		// otherwise any owner other than 0 aliases owner 0's slots.
		gpuCount := len(r.physicalDevices)
		if gpuCount > MaxSchedulerGPUs {
			gpuCount = MaxSchedulerGPUs
		}
		if gpuCount < 1 {
			gpuCount = 1
		}
		queryInfo := vk.QueryPoolCreateInfo{SType: vk.StructureTypeQueryPoolCreateInfo, QueryType: vk.QueryTypeTimestamp, QueryCount: uint32(2 * gpuCount)}
		var pool vk.QueryPool
		if res := vk.CreateQueryPool(r.device, &queryInfo, nil, &pool); res != vk.Success {
			return fmt.Errorf("vkCreateQueryPool failed: %d", res)
		}
		r.queryPool = pool
	}
	return nil
}

// vulkanDrawRequest is one owner-selection unit within a frame: a
// contiguous vertex range plus the work-unit count the scheduler costs it
// at. Bands are one request per band; grid-pattern tiles are grouped into
// per-row spans; gradient rows are one row-block request — per spec.md
// §4.3's "scheduler sees row-span or row-block draws".
type vulkanDrawRequest struct {
	vertexOffset int
	vertexCount  int
	workUnits    int
}

// vulkanDrawRequests splits a DamagePlan into the draw-request granularity
// the device-group scheduler assigns an owner to, in the same order
// planToVertices emits vertices (FullClear, Bands, Tiles, Rows) so
// vertexOffset/vertexCount index directly into the uploaded vertex buffer.
func vulkanDrawRequests(plan DamagePlan) []vulkanDrawRequest {
	var reqs []vulkanDrawRequest
	offset := 0
	push := func(quads, workUnits int) {
		if quads <= 0 {
			return
		}
		reqs = append(reqs, vulkanDrawRequest{vertexOffset: offset, vertexCount: quads * 6, workUnits: workUnits})
		offset += quads * 6
	}
	if plan.FullClear {
		push(1, GridRows*GridCols)
	}
	for range plan.Bands {
		push(1, 1)
	}
	for i := 0; i < len(plan.Tiles); {
		j := i + 1
		for j < len(plan.Tiles) && plan.Tiles[j].Tile.Row == plan.Tiles[i].Tile.Row {
			j++
		}
		push(j-i, j-i)
		i = j
	}
	if n := len(plan.Rows); n > 0 {
		push(n, n)
	}
	return reqs
}

// clampDrawRequests drops/truncates requests past maxVertexCount, mirroring
// the vertex-buffer truncation RenderFrame applies when a damage plan
// exceeds maxVerticesPerFrame.
func clampDrawRequests(reqs []vulkanDrawRequest, maxVertexCount int) []vulkanDrawRequest {
	out := reqs[:0:0]
	for _, req := range reqs {
		if req.vertexOffset >= maxVertexCount {
			break
		}
		if req.vertexOffset+req.vertexCount > maxVertexCount {
			req.vertexCount = maxVertexCount - req.vertexOffset
		}
		out = append(out, req)
	}
	return out
}

// RenderFrame records and submits one frame's command buffer, writing
// vertices derived from plan and issuing vkCmdSetDeviceMask per owner the
// scheduler selects. nowNanos/frameStartNanos feed SelectOwner exactly as
// spec.md §4.3 describes.
func (r *VulkanRenderer) RenderFrame(t float64, plan DamagePlan) error {
	vk.WaitForFences(r.device, 1, []vk.Fence{r.fence}, vk.True, ^uint64(0))
	vk.ResetFences(r.device, 1, []vk.Fence{r.fence})

	verts := planToVertices(plan)
	requests := vulkanDrawRequests(plan)
	if len(verts)/6 > maxVerticesPerFrame {
		verts = verts[:maxVerticesPerFrame*6]
		requests = clampDrawRequests(requests, maxVerticesPerFrame)
	}
	vulkanVerts := make([]vulkanVertex, len(verts)/6)
	for i := range vulkanVerts {
		o := i * 6
		vulkanVerts[i] = vulkanVertex{
			Position: [2]float32{verts[o], verts[o+1]},
			Color:    [4]float32{verts[o+2], verts[o+3], verts[o+4], verts[o+5]},
		}
	}
	if len(vulkanVerts) > 0 {
		var data unsafe.Pointer
		vk.MapMemory(r.device, r.vertexBufferMemory, 0, r.vertexBufferSize, 0, &data)
		vertBytes := unsafe.Slice((*byte)(unsafe.Pointer(&vulkanVerts[0])), len(vulkanVerts)*int(unsafe.Sizeof(vulkanVertex{})))
		dstBytes := unsafe.Slice((*byte)(data), len(vertBytes))
		copy(dstBytes, vertBytes)
		vk.UnmapMemory(r.device, r.vertexBufferMemory)
	}

	nowNanos := time.Now().UnixNano()
	if r.frameStartNanos == 0 {
		r.frameStartNanos = nowNanos
	}
	r.scheduler.BeginFrame()

	// Owner selection runs once per draw request (spec.md §4.3: "for each
	// draw request from the Pattern Engine: owner = select_owner(...)"), so
	// a single frame's bands/tile-spans may legitimately land on different
	// physical devices.
	owners := make([]int, len(requests))
	firstDrawForOwner := make(map[int]int, r.scheduler.GPUCount)
	lastDrawForOwner := make(map[int]int, r.scheduler.GPUCount)
	for i, req := range requests {
		candidate := r.drawCallCount % r.scheduler.GPUCount
		owner := r.scheduler.SelectOwner(candidate, req.workUnits, nowNanos, r.frameStartNanos)
		r.scheduler.RecordDispatch(owner, req.workUnits)
		owners[i] = owner
		if _, ok := firstDrawForOwner[owner]; !ok {
			firstDrawForOwner[owner] = i
		}
		lastDrawForOwner[owner] = i
		r.drawCallCount++
	}

	vk.ResetCommandBuffer(r.commandBuffer, vk.CommandBufferResetFlags(0))
	beginInfo := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	vk.BeginCommandBuffer(r.commandBuffer, &beginInfo)

	if r.timestampsSupported {
		vk.CmdResetQueryPool(r.commandBuffer, r.queryPool, 0, uint32(2*r.scheduler.GPUCount))
	}

	clearColor := vk.NewClearValue([]float32{0, 0, 0, 1})
	renderPassInfo := vk.RenderPassBeginInfo{
		SType: vk.StructureTypeRenderPassBeginInfo, RenderPass: r.renderPass, Framebuffer: r.framebuffer,
		RenderArea:      vk.Rect2D{Extent: vk.Extent2D{Width: uint32(r.width), Height: uint32(r.height)}},
		ClearValueCount: 1, PClearValues: []vk.ClearValue{clearColor},
	}
	vk.CmdBeginRenderPass(r.commandBuffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(r.commandBuffer, vk.PipelineBindPointGraphics, r.pipeline)
	if len(vulkanVerts) > 0 {
		vk.CmdBindVertexBuffers(r.commandBuffer, 0, 1, []vk.Buffer{r.vertexBuffer}, []vk.DeviceSize{0})
	}

	// Per spec.md §4.3's dispatch mechanics: vkCmdSetDeviceMask scopes each
	// draw to its owner; the first draw on an owner this frame writes its
	// TOP_OF_PIPE timestamp, the last writes BOTTOM_OF_PIPE.
	for i, req := range requests {
		owner := owners[i]
		vk.CmdSetDeviceMask(r.commandBuffer, uint32(1<<uint(owner)))
		if r.timestampsSupported && firstDrawForOwner[owner] == i {
			vk.CmdWriteTimestamp(r.commandBuffer, vk.PipelineStageTopOfPipeBit, r.queryPool, uint32(2*owner))
		}
		if req.vertexCount > 0 {
			vk.CmdDraw(r.commandBuffer, uint32(req.vertexCount), 1, uint32(req.vertexOffset), 0)
		}
		if r.timestampsSupported && lastDrawForOwner[owner] == i {
			vk.CmdWriteTimestamp(r.commandBuffer, vk.PipelineStageBottomOfPipeBit, r.queryPool, uint32(2*owner+1))
		}
	}
	vk.CmdEndRenderPass(r.commandBuffer)

	vk.EndCommandBuffer(r.commandBuffer)

	deviceMask := uint32(0)
	for i := range r.physicalDevices {
		deviceMask |= 1 << uint(i)
	}
	deviceGroupSubmit := vk.DeviceGroupSubmitInfo{
		SType: vk.StructureTypeDeviceGroupSubmitInfo, CommandBufferCount: 1,
		PCommandBufferDeviceMasks: []uint32{deviceMask},
	}
	submitInfo := vk.SubmitInfo{
		SType: vk.StructureTypeSubmitInfo, PNext: unsafe.Pointer(&deviceGroupSubmit),
		CommandBufferCount: 1, PCommandBuffers: []vk.CommandBuffer{r.commandBuffer},
	}
	vk.QueueSubmit(r.queue, 1, []vk.SubmitInfo{submitInfo}, r.fence)

	if r.timestampsSupported {
		vk.WaitForFences(r.device, 1, []vk.Fence{r.fence}, vk.True, ^uint64(0))
		for owner := 0; owner < r.scheduler.GPUCount; owner++ {
			if !r.scheduler.OwnerUsed[owner] {
				continue
			}
			timestamps := make([]uint64, 2)
			vk.GetQueryPoolResults(r.device, r.queryPool, uint32(2*owner), 2, uint(len(timestamps)*8), unsafe.Pointer(&timestamps[0]), 8, vk.QueryResultFlags(vk.QueryResult64Bit|vk.QueryResultWaitBit))
			elapsedMillis := float64(timestamps[1]-timestamps[0]) * r.timestampPeriod / 1e6
			r.scheduler.UpdateEMATimestamps(owner, elapsedMillis)
		}
	} else {
		r.scheduler.UpdateEMAWallClockFallback(float64(time.Now().UnixNano()-r.frameStartNanos) / 1e6)
	}

	if r.tracker != nil && r.tracker.Enabled {
		h := glStateHashPrefix(len(vulkanVerts), len(requests), plan)
		r.tracker.Record(h)
	}
	r.frameStartNanos = time.Now().UnixNano()
	return nil
}

func (r *VulkanRenderer) Shutdown() {
	if r.device == 0 {
		return
	}
	vk.DeviceWaitIdle(r.device)
	if r.queryPool != 0 {
		vk.DestroyQueryPool(r.device, r.queryPool, nil)
	}
	if r.fence != 0 {
		vk.DestroyFence(r.device, r.fence, nil)
	}
	if r.vertexBuffer != 0 {
		vk.DestroyBuffer(r.device, r.vertexBuffer, nil)
	}
	if r.vertexBufferMemory != 0 {
		vk.FreeMemory(r.device, r.vertexBufferMemory, nil)
	}
	if r.pipeline != 0 {
		vk.DestroyPipeline(r.device, r.pipeline, nil)
	}
	if r.pipelineLayout != 0 {
		vk.DestroyPipelineLayout(r.device, r.pipelineLayout, nil)
	}
	if r.vertShader != 0 {
		vk.DestroyShaderModule(r.device, r.vertShader, nil)
	}
	if r.fragShader != 0 {
		vk.DestroyShaderModule(r.device, r.fragShader, nil)
	}
	if r.framebuffer != 0 {
		vk.DestroyFramebuffer(r.device, r.framebuffer, nil)
	}
	if r.renderPass != 0 {
		vk.DestroyRenderPass(r.device, r.renderPass, nil)
	}
	if r.colorImageView != 0 {
		vk.DestroyImageView(r.device, r.colorImageView, nil)
	}
	if r.colorImage != 0 {
		vk.DestroyImage(r.device, r.colorImage, nil)
	}
	if r.colorImageMemory != 0 {
		vk.FreeMemory(r.device, r.colorImageMemory, nil)
	}
	if r.commandPool != 0 {
		vk.DestroyCommandPool(r.device, r.commandPool, nil)
	}
	vk.DestroyDevice(r.device, nil)
	if r.instance != 0 {
		vk.DestroyInstance(r.instance, nil)
	}
}
