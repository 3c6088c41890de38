package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/chewxy/math32"
)

// Assets are the decoded inputs techniques draw with. Every field is optional.
type Assets struct {
	// Diffuse is the surface texture of floors and walls.
	Diffuse *common.ImageData

	// Container is the texture of the boxes in the bloom and phong scenes.
	Container *common.ImageData

	// Environment is an equirectangular HDR image lighting the PBR scene.
	Environment *common.ImageData

	// Model replaces the cube drawn in the deferred and SSAO scenes.
	Model *common.ImportedModel
}

// checkerImage is the stand-in for a missing surface texture.
func checkerImage(name string, size, cells int, a, b [3]byte) *common.ImageData {
	img := &common.ImageData{Name: name, Width: size, Height: size, Channels: 3, Pixels: make([]byte, size*size*3)}
	cell := max(size/cells, 1)
	for y := range size {
		for x := range size {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			copy(img.Pixels[(y*size+x)*3:], c[:])
		}
	}
	return img
}

// bevelImage is the stand-in normal map: square tiles whose edges slope outwards, encoded in
// tangent space.
func bevelImage(name string, size, cells, bevel int) *common.ImageData {
	img := &common.ImageData{Name: name, Width: size, Height: size, Channels: 3, Pixels: make([]byte, size*size*3)}
	cell := max(size/cells, 1)
	slope := func(c int) float32 {
		switch {
		case c < bevel:
			return -0.6
		case c >= cell-bevel:
			return 0.6
		}
		return 0
	}
	encode := func(v float32) byte { return byte((v*0.5+0.5)*255 + 0.5) }
	for y := range size {
		for x := range size {
			nx, ny := slope(x%cell), slope(y%cell)
			inv := 1 / math32.Sqrt(nx*nx+ny*ny+1)
			copy(img.Pixels[(y*size+x)*3:], []byte{encode(nx * inv), encode(ny * inv), encode(inv)})
		}
	}
	return img
}

// skyImage is the stand-in for a missing environment: a float sky gradient over a dim ground with
// a bright sun spot, in equirectangular layout.
func skyImage(width, height int) *common.ImageData {
	img := &common.ImageData{Name: "procedural-sky", Width: width, Height: height, Channels: 3, HDR: true,
		Floats: make([]float32, width*height*3)}
	for y := range height {
		v := (float32(y) + 0.5) / float32(height)
		for x := range width {
			u := (float32(x) + 0.5) / float32(width)
			var r, g, b float32
			if v > 0.5 {
				t := (v - 0.5) * 2
				r, g, b = common.Lerp(0.9, 0.3, t), common.Lerp(0.95, 0.5, t), common.Lerp(1.0, 1.2, t)
			} else {
				r, g, b = 0.15, 0.12, 0.1
			}
			du, dv := u-0.25, v-0.7
			if d := math32.Sqrt(du*du + dv*dv); d < 0.03 {
				r, g, b = r+20, g+18, b+15
			}
			i := (y*width + x) * 3
			img.Floats[i], img.Floats[i+1], img.Floats[i+2] = r, g, b
		}
	}
	return img
}

// imageTexture uploads img, or fallback when img is nil.
func imageTexture(ctx *gpu.RenderContext, img, fallback *common.ImageData, tag texture.Tag, opts ...texture.TextureBuilderOption) (*texture.Texture, error) {
	return texture.FromImage(ctx, common.Coalesce(img, fallback), tag, opts...)
}

// sceneModel uploads imported with its material textures, or wraps a unit cube when it is nil.
// Everything it creates is owned by b.
func sceneModel(b *base, imported *common.ImportedModel) (model.Model, error) {
	ctx := b.ctx
	if imported == nil {
		cube, err := model.NewCube(ctx)
		if err != nil {
			return nil, err
		}
		b.own(cube)
		return model.NewModel(model.WithName("cube"), model.WithMeshes(cube)), nil
	}

	materials := make([]material.Phong, len(imported.Materials))
	for i, imp := range imported.Materials {
		maps := [4]*texture.Texture{}
		for j, slot := range []struct {
			path string
			tag  texture.Tag
		}{
			{imp.DiffuseTexturePath, texture.TagDiffuse},
			{imp.SpecularTexturePath, texture.TagSpecular},
			{imp.NormalTexturePath, texture.TagNormal},
			{imp.EmissionTexturePath, texture.TagEmission},
		} {
			img := imported.Images[slot.path]
			if slot.path == "" || img == nil {
				continue
			}
			tex, err := texture.FromImage(ctx, img, slot.tag,
				texture.WithMipmaps(), texture.WithFilter(gpu.FilterLinearMipmapLinear, gpu.FilterLinear))
			if err != nil {
				return nil, fmt.Errorf("model %q material %q: %w", imported.Name, imp.Name, err)
			}
			b.own(tex)
			maps[j] = tex
		}
		materials[i] = material.NewPhong(maps[0],
			material.WithName(imp.Name),
			material.WithSpecularMap(maps[1]),
			material.WithNormalMap(maps[2]),
			material.WithEmissionMap(maps[3]),
			material.WithShininess(common.Coalesce(imp.Shininess, material.DefaultShininess)),
		)
	}

	m, err := model.FromImported(ctx, imported, model.WithMaterials(materials))
	if err != nil {
		return nil, err
	}
	b.own(m)
	return m, nil
}
