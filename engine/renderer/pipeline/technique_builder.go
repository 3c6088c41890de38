package pipeline

import "github.com/Carmen-Shannon/oxy-gl/common"

// ShadowBuilderOption is a functional option used to configure a Shadow technique.
type ShadowBuilderOption func(*Shadow)

// DeferredBuilderOption is a functional option used to configure a Deferred technique.
type DeferredBuilderOption func(*Deferred)

// SSAOBuilderOption is a functional option used to configure an SSAO technique.
type SSAOBuilderOption func(*SSAO)

// BloomBuilderOption is a functional option used to configure a Bloom technique.
type BloomBuilderOption func(*Bloom)

// IBLBuilderOption is a functional option used to configure an IBL technique.
type IBLBuilderOption func(*IBL)

// PBRBuilderOption is a functional option used to configure a PBR technique.
type PBRBuilderOption func(*PBR)

// PhongBuilderOption is a functional option used to configure a Phong technique.
type PhongBuilderOption func(*Phong)

// WithShadowDiffuse sets the surface texture of the floor and cubes.
//
// Parameters:
//   - img: the decoded image, nil for the procedural checkerboard
//
// Returns:
//   - ShadowBuilderOption: a function that applies the texture to a Shadow technique
func WithShadowDiffuse(img *common.ImageData) ShadowBuilderOption {
	return func(s *Shadow) {
		s.diffuseImage = img
	}
}

// WithShadowResolution overrides the shadow map edge length.
func WithShadowResolution(size int) ShadowBuilderOption {
	return func(s *Shadow) {
		s.resolution = size
	}
}

// WithShadowPrograms shares a program cache with the technique.
func WithShadowPrograms(pc *ProgramCache) ShadowBuilderOption {
	return func(s *Shadow) {
		s.programs = pc
	}
}

// WithDeferredModel replaces the cube drawn at each grid position.
//
// Parameters:
//   - m: the parsed model, nil for a cube
//
// Returns:
//   - DeferredBuilderOption: a function that applies the model to a Deferred technique
func WithDeferredModel(m *common.ImportedModel) DeferredBuilderOption {
	return func(d *Deferred) {
		d.imported = m
	}
}

// WithLightSeed seeds the random light placement so scenes are reproducible.
func WithLightSeed(seed uint64) DeferredBuilderOption {
	return func(d *Deferred) {
		d.seed = seed
	}
}

// WithLightCulling toggles frustum culling of the point lights before upload.
func WithLightCulling(enabled bool) DeferredBuilderOption {
	return func(d *Deferred) {
		d.culling = enabled
	}
}

// WithDeferredPrograms shares a program cache with the technique.
func WithDeferredPrograms(pc *ProgramCache) DeferredBuilderOption {
	return func(d *Deferred) {
		d.programs = pc
	}
}

// WithSSAOModel replaces the cube placed in the room.
func WithSSAOModel(m *common.ImportedModel) SSAOBuilderOption {
	return func(s *SSAO) {
		s.imported = m
	}
}

// WithKernelSeed seeds the sample kernel and noise generation.
func WithKernelSeed(seed uint64) SSAOBuilderOption {
	return func(s *SSAO) {
		s.seed = seed
	}
}

// WithSSAOPrograms shares a program cache with the technique.
func WithSSAOPrograms(pc *ProgramCache) SSAOBuilderOption {
	return func(s *SSAO) {
		s.programs = pc
	}
}

// WithBloomTextures sets the floor and container textures.
//
// Parameters:
//   - floor: the floor image, nil for a checkerboard
//   - container: the container image, nil for a checkerboard
//
// Returns:
//   - BloomBuilderOption: a function that applies the textures to a Bloom technique
func WithBloomTextures(floor, container *common.ImageData) BloomBuilderOption {
	return func(b *Bloom) {
		b.floorImage, b.containerImage = floor, container
	}
}

// WithExposure sets the starting tone mapping exposure.
func WithExposure(exposure float32) BloomBuilderOption {
	return func(b *Bloom) {
		b.exposure = max(exposure, 0)
	}
}

// WithBlurAmount sets the number of horizontal and vertical blur pairs.
func WithBlurAmount(amount int) BloomBuilderOption {
	return func(b *Bloom) {
		b.blurAmount = max(amount, 1)
	}
}

// WithBloomPrograms shares a program cache with the technique.
func WithBloomPrograms(pc *ProgramCache) BloomBuilderOption {
	return func(b *Bloom) {
		b.programs = pc
	}
}

// WithEnvironment sets the equirectangular HDR image the maps are computed from.
//
// Parameters:
//   - img: the decoded HDR image, nil for the procedural sky
//
// Returns:
//   - IBLBuilderOption: a function that applies the environment to an IBL technique
func WithEnvironment(img *common.ImageData) IBLBuilderOption {
	return func(i *IBL) {
		i.environment = img
	}
}

// WithSizes overrides the map resolutions. Tests use tiny sizes.
func WithSizes(sizes IBLSizes) IBLBuilderOption {
	return func(i *IBL) {
		i.sizes = sizes
	}
}

// WithIBLPrograms shares a program cache with the technique.
func WithIBLPrograms(pc *ProgramCache) IBLBuilderOption {
	return func(i *IBL) {
		i.programs = pc
	}
}

// WithPBREnvironment sets the equirectangular HDR image lighting the spheres.
func WithPBREnvironment(img *common.ImageData) PBRBuilderOption {
	return func(p *PBR) {
		p.iblOptions = append(p.iblOptions, WithEnvironment(img))
	}
}

// WithPBRSizes overrides the map resolutions of the embedded IBL precomputation.
func WithPBRSizes(sizes IBLSizes) PBRBuilderOption {
	return func(p *PBR) {
		p.iblOptions = append(p.iblOptions, WithSizes(sizes))
	}
}

// WithGrid sets the number of sphere rows (metallic) and columns (roughness).
func WithGrid(rows, columns int) PBRBuilderOption {
	return func(p *PBR) {
		p.rows, p.columns = max(rows, 1), max(columns, 1)
	}
}

// WithPBRPrograms shares a program cache with the technique.
func WithPBRPrograms(pc *ProgramCache) PBRBuilderOption {
	return func(p *PBR) {
		p.programs = pc
	}
}

// WithPhongDiffuse sets the container texture.
//
// Parameters:
//   - img: the decoded image, nil for a checkerboard
//
// Returns:
//   - PhongBuilderOption: a function that applies the texture to a Phong technique
func WithPhongDiffuse(img *common.ImageData) PhongBuilderOption {
	return func(p *Phong) {
		p.diffuseImage = img
	}
}

// WithFlashLight sets whether the camera flash light starts on.
func WithFlashLight(enabled bool) PhongBuilderOption {
	return func(p *Phong) {
		p.flashOn = enabled
	}
}

// WithNormalMaps sets whether the containers start with normal mapping.
func WithNormalMaps(enabled bool) PhongBuilderOption {
	return func(p *Phong) {
		p.normalsOn = enabled
	}
}

// WithPhongPrograms shares a program cache with the technique.
func WithPhongPrograms(pc *ProgramCache) PhongBuilderOption {
	return func(p *Phong) {
		p.programs = pc
	}
}
