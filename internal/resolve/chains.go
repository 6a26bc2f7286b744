package resolve

import (
	"context"

	"github.com/backmassage/mediainfo/internal/classify"
	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
	"github.com/backmassage/mediainfo/internal/probe/imaging"
	"github.com/backmassage/mediainfo/internal/probe/mesh"
	"github.com/backmassage/mediainfo/internal/probe/office"
	"github.com/backmassage/mediainfo/internal/probe/pdfdoc"
)

// image tries the native decoders, then the header parser matching the
// sub-format, then the multimedia and generic-metadata engines. A record
// without dimensions is discarded and the chain goes on.
func (r *Resolver) image(ctx context.Context, path, uti string) (info.Info, []probe.Attempt, error) {
	steps := []probe.Step[*info.ImageInfo]{bind("image", path, imaging.Native)}
	switch {
	case classify.Conforms(uti, classify.TypeNetPBM):
		steps = append(steps, bind("netpbm", path, imaging.NetPBM))
	case classify.Conforms(uti, classify.TypeWebP):
		steps = append(steps, bind("webp", path, imaging.WebP))
	case classify.Conforms(uti, classify.TypeSVG):
		steps = append(steps, bind("svg", path, imaging.SVG))
	}
	for _, name := range []config.Engine{config.EngineFFmpeg, config.EngineMetadata} {
		if p, ok := r.engine(name).(ImageProber); ok {
			steps = append(steps, bind(string(name), path, p.Image))
		}
	}
	for i := range steps {
		steps[i].Accept = func(v *info.ImageInfo) bool { return v != nil && !v.Empty() }
	}
	return chain(ctx, steps)
}

// media tries each configured engine once, in order, and keeps the first
// non-empty stream sequence.
func (r *Resolver) media(ctx context.Context, t Target, cat info.Category) (info.Info, []probe.Attempt, error) {
	engines := t.Engines
	if len(engines) == 0 {
		engines = r.cfg.Engines
	}
	steps := make([]probe.Step[info.Streams], 0, len(engines))
	for _, name := range engines {
		name := name
		e := r.engine(name)
		if e == nil {
			steps = append(steps, probe.Step[info.Streams]{
				Name: string(name),
				Probe: func(context.Context) (info.Streams, error) {
					return nil, probe.NotApplicablef(string(name), "engine not available")
				},
			})
			continue
		}
		s := bind(string(name), t.Path, e.Streams)
		s.Accept = func(v info.Streams) bool { return len(v) > 0 }
		steps = append(steps, s)
	}
	streams, ok, trace, err := probe.Chain(ctx, steps)
	if err != nil || !ok {
		return nil, trace, err
	}
	if cat == info.CategoryAudio {
		return &info.AudioInfo{Streams: streams}, trace, nil
	}
	return &info.VideoInfo{Streams: streams}, trace, nil
}

func (r *Resolver) pdf(ctx context.Context, path string) (info.Info, []probe.Attempt, error) {
	deep := r.cfg.OfficeDeepScan
	steps := []probe.Step[*info.PDFInfo]{{
		Name:  pdfdoc.Name,
		Probe: func(ctx context.Context) (*info.PDFInfo, error) { return pdfdoc.Read(ctx, path, deep) },
	}}
	if p, ok := r.engine(config.EngineMetadata).(PDFProber); ok {
		steps = append(steps, bind(string(config.EngineMetadata), path, p.PDF))
	}
	return chain(ctx, steps)
}

// office tries the requested container family, or both families (OOXML
// first) when the family is unknown.
func (r *Resolver) office(ctx context.Context, t Target, cat info.Category) (info.Info, []probe.Attempt, error) {
	families := []info.Container{info.ContainerOOXML, info.ContainerOpenDocument}
	if t.Container != info.ContainerUnknown {
		families = []info.Container{t.Container}
	}
	deep := r.cfg.OfficeDeepScan
	switch cat {
	case info.CategoryWord:
		return chain(ctx, officeSteps(t.Path, families, deep, office.Word))
	case info.CategoryExcel:
		return chain(ctx, officeSteps(t.Path, families, deep, office.Excel))
	default:
		return chain(ctx, officeSteps(t.Path, families, deep, office.Powerpoint))
	}
}

func officeSteps[T info.Info](path string, families []info.Container, deep bool,
	read func(context.Context, string, info.Container, bool) (T, error)) []probe.Step[T] {
	steps := make([]probe.Step[T], 0, len(families))
	for _, c := range families {
		c := c
		steps = append(steps, probe.Step[T]{
			Name:  office.Name(c),
			Probe: func(ctx context.Context) (T, error) { return read(ctx, path, c, deep) },
		})
	}
	return steps
}

func (r *Resolver) model(ctx context.Context, path string) (info.Info, []probe.Attempt, error) {
	return chain(ctx, []probe.Step[*info.ModelInfo]{
		bind(mesh.NamePLY, path, mesh.PLY),
		bind(mesh.NameSTL, path, mesh.STL),
		bind(mesh.NameOBJ, path, mesh.OBJ),
	})
}
