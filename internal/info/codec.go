package info

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// SchemaVersion is written into every encoded record. Decoders accept any
// version and skip fields they do not know.
const SchemaVersion = 1

// EncodingError reports a record that could not be serialized, or a blob
// whose fields carry an unexpected wire type.
type EncodingError struct {
	Op  string // "encode" or "decode"
	Err error
}

func (e *EncodingError) Error() string { return "info " + e.Op + ": " + e.Err.Error() }

func (e *EncodingError) Unwrap() error { return e.Err }

var (
	errNegative     = errors.New("negative count")
	errBadFloat     = errors.New("duration is negative or not finite")
	errNoCategory   = errors.New("missing or unknown category")
	errUnknownInfo  = errors.New("unsupported record type")
	errIntOverflow  = errors.New("integer overflows int")
	errSizeSentinel = errors.New("size below -1")
)

// Envelope fields.
const (
	fVersion  protowire.Number = 1
	fCategory protowire.Number = 2
	fPath     protowire.Number = 3
	fSize     protowire.Number = 4
	fPayload  protowire.Number = 5
)

// Encode serializes in. A nil record encodes to a nil blob.
func Encode(in Info) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	src := in.Source()
	if src.Size < -1 {
		return nil, &EncodingError{Op: "encode", Err: errSizeSentinel}
	}
	var p encoder
	switch v := in.(type) {
	case *ImageInfo:
		p.image(v)
	case *VideoInfo:
		p.streams(v.Streams)
	case *AudioInfo:
		p.streams(v.Streams)
	case *WordInfo:
		p.document(v.Container, v.Pages, v.TextStats, &v.Meta)
	case *ExcelInfo:
		p.document(v.Container, v.Sheets, v.TextStats, &v.Meta)
		for _, name := range v.SheetNames {
			p.optString(dSheetName, &name)
		}
	case *PowerpointInfo:
		p.document(v.Container, v.Slides, v.TextStats, &v.Meta)
	case *PDFInfo:
		p.document(ContainerUnknown, v.Pages, v.TextStats, &v.Meta)
		p.string(dVersion, v.Version)
		p.float(dPageWidth, v.PageWidth)
		p.float(dPageHeight, v.PageHeight)
	case *ModelInfo:
		p.model(v)
	default:
		return nil, &EncodingError{Op: "encode", Err: fmt.Errorf("%w: %T", errUnknownInfo, in)}
	}
	if p.err != nil {
		return nil, &EncodingError{Op: "encode", Err: p.err}
	}

	var e encoder
	e.uint(fVersion, SchemaVersion)
	e.uint(fCategory, uint64(in.Category()))
	e.string(fPath, src.Path)
	e.b = protowire.AppendTag(e.b, fSize, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeZigZag(src.Size))
	e.message(fPayload, p.b)
	return e.b, nil
}

// Decode parses a blob produced by Encode. An empty blob decodes to a nil
// record (the sender had nothing to report).
func Decode(blob []byte) (Info, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var (
		d       decoder
		cat     Category
		file    = File{Size: -1}
		payload []byte
	)
	err := walk(blob, func(f field) error {
		switch f.num {
		case fCategory:
			cat = Category(d.uint(f))
		case fPath:
			file.Path = d.string(f)
		case fSize:
			file.Size = d.sint(f)
		case fPayload:
			payload = d.bytes(f)
		}
		return d.err
	})
	if err != nil {
		return nil, err
	}
	out, err := decodePayload(cat, file, payload)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodePayload(cat Category, file File, payload []byte) (Info, error) {
	switch cat {
	case CategoryImage:
		out := &ImageInfo{File: file}
		return out, decodeImage(payload, out)
	case CategoryVideo:
		out := &VideoInfo{File: file}
		s, err := decodeStreams(payload)
		out.Streams = s
		return out, err
	case CategoryAudio:
		out := &AudioInfo{File: file}
		s, err := decodeStreams(payload)
		out.Streams = s
		return out, err
	case CategoryWord:
		out := &WordInfo{File: file}
		doc, err := decodeDocument(payload)
		out.Container, out.Pages, out.TextStats, out.Meta = doc.container, doc.count, doc.stats, doc.meta
		return out, err
	case CategoryExcel:
		out := &ExcelInfo{File: file}
		doc, err := decodeDocument(payload)
		out.Container, out.Sheets, out.TextStats, out.Meta = doc.container, doc.count, doc.stats, doc.meta
		out.SheetNames = doc.sheetNames
		return out, err
	case CategoryPowerpoint:
		out := &PowerpointInfo{File: file}
		doc, err := decodeDocument(payload)
		out.Container, out.Slides, out.TextStats, out.Meta = doc.container, doc.count, doc.stats, doc.meta
		return out, err
	case CategoryPDF:
		out := &PDFInfo{File: file}
		doc, err := decodeDocument(payload)
		out.Pages, out.TextStats, out.Meta = doc.count, doc.stats, doc.meta
		out.Version, out.PageWidth, out.PageHeight = doc.version, doc.width, doc.height
		return out, err
	case CategoryModel:
		out := &ModelInfo{File: file}
		meshes, err := decodeModel(payload)
		out.Meshes = meshes
		return out, err
	default:
		return nil, &EncodingError{Op: "decode", Err: errNoCategory}
	}
}

// --- image ---

const (
	iWidth  protowire.Number = 1
	iHeight protowire.Number = 2
	iColor  protowire.Number = 3
	iDepth  protowire.Number = 4
	iDPI    protowire.Number = 5
)

func (e *encoder) image(v *ImageInfo) {
	e.count(iWidth, v.Width)
	e.count(iHeight, v.Height)
	e.string(iColor, v.ColorMode)
	e.count(iDepth, v.Depth)
	e.count(iDPI, v.DPI)
}

func decodeImage(b []byte, out *ImageInfo) error {
	var d decoder
	return walk(b, func(f field) error {
		switch f.num {
		case iWidth:
			out.Width = d.int(f)
		case iHeight:
			out.Height = d.int(f)
		case iColor:
			out.ColorMode = d.string(f)
		case iDepth:
			out.Depth = d.int(f)
		case iDPI:
			out.DPI = d.int(f)
		}
		return d.err
	})
}

// --- streams ---

const (
	mStream protowire.Number = 1

	sKind        protowire.Number = 1
	sWidth       protowire.Number = 2
	sHeight      protowire.Number = 3
	sDuration    protowire.Number = 4
	sCodec       protowire.Number = 5
	sPixelFormat protowire.Number = 6
	sLanguage    protowire.Number = 7
	sBitRate     protowire.Number = 8
	sFrames      protowire.Number = 9
	sTitle       protowire.Number = 10
)

func (e *encoder) streams(list Streams) {
	for _, st := range list {
		var s encoder
		s.uint(sKind, uint64(st.Kind()))
		switch v := st.(type) {
		case VideoStream:
			s.count(sWidth, v.Width)
			s.count(sHeight, v.Height)
			s.duration(sDuration, v.Duration)
			s.string(sCodec, v.Codec)
			s.optString(sPixelFormat, v.PixelFormat)
			s.optString(sLanguage, v.Language)
			s.count64(sBitRate, v.BitRate)
			s.count64(sFrames, v.Frames)
		case AudioStream:
			s.duration(sDuration, v.Duration)
			s.string(sCodec, v.Codec)
			s.optString(sLanguage, v.Language)
			s.count64(sBitRate, v.BitRate)
		case SubtitleStream:
			s.optString(sTitle, v.Title)
			s.optString(sLanguage, v.Language)
		}
		if s.err != nil && e.err == nil {
			e.err = s.err
		}
		e.message(mStream, s.b)
	}
}

func decodeStreams(b []byte) (Streams, error) {
	var (
		d   decoder
		out Streams
	)
	err := walk(b, func(f field) error {
		if f.num != mStream {
			return nil
		}
		st, err := decodeStream(d.bytes(f))
		if d.err != nil {
			return d.err
		}
		if err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

func decodeStream(b []byte) (Stream, error) {
	var (
		d    decoder
		kind StreamKind
		v    VideoStream
	)
	var title *string
	err := walk(b, func(f field) error {
		switch f.num {
		case sKind:
			kind = StreamKind(d.uint(f))
		case sWidth:
			v.Width = d.int(f)
		case sHeight:
			v.Height = d.int(f)
		case sDuration:
			v.Duration = d.float(f)
		case sCodec:
			v.Codec = d.string(f)
		case sPixelFormat:
			v.PixelFormat = d.optString(f)
		case sLanguage:
			v.Language = d.optString(f)
		case sBitRate:
			v.BitRate = d.int64(f)
		case sFrames:
			v.Frames = d.int64(f)
		case sTitle:
			title = d.optString(f)
		}
		return d.err
	})
	if err != nil {
		return nil, err
	}
	switch kind {
	case StreamVideo:
		return v, nil
	case StreamAudio:
		return AudioStream{Duration: v.Duration, Codec: v.Codec, Language: v.Language, BitRate: v.BitRate}, nil
	case StreamSubtitle:
		return SubtitleStream{Title: title, Language: v.Language}, nil
	default:
		// Kinds added by newer writers degrade to an ignored stream.
		return OtherStream{}, nil
	}
}

// --- documents ---

const (
	dContainer  protowire.Number = 1
	dCount      protowire.Number = 2
	dWords      protowire.Number = 3
	dCharacters protowire.Number = 4
	dMeta       protowire.Number = 5
	dSheetName  protowire.Number = 6
	dVersion    protowire.Number = 7
	dPageWidth  protowire.Number = 8
	dPageHeight protowire.Number = 9

	metaTitle       protowire.Number = 1
	metaAuthor      protowire.Number = 2
	metaSubject     protowire.Number = 3
	metaKeywords    protowire.Number = 4
	metaApplication protowire.Number = 5
	metaProducer    protowire.Number = 6
	metaCreated     protowire.Number = 7
	metaModified    protowire.Number = 8

	tSeconds protowire.Number = 1
	tNanos   protowire.Number = 2
)

type document struct {
	container  Container
	count      int
	stats      TextStats
	meta       DocMeta
	sheetNames []string
	version    string
	width      float64
	height     float64
}

func (e *encoder) document(c Container, count int, stats TextStats, m *DocMeta) {
	e.uint(dContainer, uint64(c))
	e.count(dCount, count)
	e.optCount(dWords, stats.Words)
	e.optCount(dCharacters, stats.Characters)

	var me encoder
	me.optString(metaTitle, m.Title)
	me.optString(metaAuthor, m.Author)
	me.optString(metaSubject, m.Subject)
	me.optString(metaKeywords, m.Keywords)
	me.optString(metaApplication, m.Application)
	me.optString(metaProducer, m.Producer)
	me.time(metaCreated, m.Created)
	me.time(metaModified, m.Modified)
	e.message(dMeta, me.b)
}

func decodeDocument(b []byte) (document, error) {
	var (
		d   decoder
		doc document
	)
	err := walk(b, func(f field) error {
		switch f.num {
		case dContainer:
			doc.container = Container(d.uint(f))
		case dCount:
			doc.count = d.int(f)
		case dWords:
			doc.stats.Words = d.optInt(f)
		case dCharacters:
			doc.stats.Characters = d.optInt(f)
		case dMeta:
			m, err := decodeMeta(d.bytes(f))
			if err != nil {
				return err
			}
			doc.meta = m
		case dSheetName:
			doc.sheetNames = append(doc.sheetNames, d.string(f))
		case dVersion:
			doc.version = d.string(f)
		case dPageWidth:
			doc.width = d.float(f)
		case dPageHeight:
			doc.height = d.float(f)
		}
		return d.err
	})
	return doc, err
}

func decodeMeta(b []byte) (DocMeta, error) {
	var (
		d decoder
		m DocMeta
	)
	err := walk(b, func(f field) error {
		switch f.num {
		case metaTitle:
			m.Title = d.optString(f)
		case metaAuthor:
			m.Author = d.optString(f)
		case metaSubject:
			m.Subject = d.optString(f)
		case metaKeywords:
			m.Keywords = d.optString(f)
		case metaApplication:
			m.Application = d.optString(f)
		case metaProducer:
			m.Producer = d.optString(f)
		case metaCreated:
			m.Created = d.time(f)
		case metaModified:
			m.Modified = d.time(f)
		}
		return d.err
	})
	return m, err
}

// --- model ---

const (
	mMesh protowire.Number = 1

	meshName      protowire.Number = 1
	meshVertices  protowire.Number = 2
	meshNormals   protowire.Number = 3
	meshTangent   protowire.Number = 4
	meshTexCoord  protowire.Number = 5
	meshColor     protowire.Number = 6
	meshOcclusion protowire.Number = 7
	meshSubmesh   protowire.Number = 8

	subName     protowire.Number = 1
	subMaterial protowire.Number = 2
	subGeometry protowire.Number = 3
)

func (e *encoder) model(v *ModelInfo) {
	for _, mesh := range v.Meshes {
		var me encoder
		me.string(meshName, mesh.Name)
		me.count(meshVertices, mesh.VertexCount)
		me.bool(meshNormals, mesh.HasNormals)
		me.bool(meshTangent, mesh.HasTangent)
		me.bool(meshTexCoord, mesh.HasTextureCoordinate)
		me.bool(meshColor, mesh.HasVertexColor)
		me.bool(meshOcclusion, mesh.HasOcclusion)
		for _, sub := range mesh.Submeshes {
			var se encoder
			se.string(subName, sub.Name)
			se.optString(subMaterial, sub.Material)
			se.uint(subGeometry, uint64(sub.Geometry))
			me.message(meshSubmesh, se.b)
		}
		if me.err != nil && e.err == nil {
			e.err = me.err
		}
		e.message(mMesh, me.b)
	}
}

func decodeModel(b []byte) ([]Mesh, error) {
	var (
		d   decoder
		out []Mesh
	)
	err := walk(b, func(f field) error {
		if f.num != mMesh {
			return nil
		}
		mesh, err := decodeMesh(d.bytes(f))
		if d.err != nil {
			return d.err
		}
		if err != nil {
			return err
		}
		out = append(out, mesh)
		return nil
	})
	return out, err
}

func decodeMesh(b []byte) (Mesh, error) {
	var (
		d    decoder
		mesh Mesh
	)
	err := walk(b, func(f field) error {
		switch f.num {
		case meshName:
			mesh.Name = d.string(f)
		case meshVertices:
			mesh.VertexCount = d.int(f)
		case meshNormals:
			mesh.HasNormals = d.bool(f)
		case meshTangent:
			mesh.HasTangent = d.bool(f)
		case meshTexCoord:
			mesh.HasTextureCoordinate = d.bool(f)
		case meshColor:
			mesh.HasVertexColor = d.bool(f)
		case meshOcclusion:
			mesh.HasOcclusion = d.bool(f)
		case meshSubmesh:
			sub, err := decodeSubmesh(d.bytes(f))
			if d.err != nil {
				return d.err
			}
			if err != nil {
				return err
			}
			mesh.Submeshes = append(mesh.Submeshes, sub)
		}
		return d.err
	})
	return mesh, err
}

func decodeSubmesh(b []byte) (Submesh, error) {
	var (
		d   decoder
		sub Submesh
	)
	err := walk(b, func(f field) error {
		switch f.num {
		case subName:
			sub.Name = d.string(f)
		case subMaterial:
			sub.Material = d.optString(f)
		case subGeometry:
			g := d.uint(f)
			if g > uint64(GeometryVariable) {
				g = uint64(GeometryUnknown)
			}
			sub.Geometry = Geometry(g)
		}
		return d.err
	})
	return sub, err
}

// --- wire helpers ---

type encoder struct {
	b   []byte
	err error
}

func (e *encoder) uint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) count(num protowire.Number, n int) { e.count64(num, int64(n)) }

func (e *encoder) count64(num protowire.Number, n int64) {
	if n < 0 {
		e.fail(fmt.Errorf("field %d: %w (%d)", num, errNegative, n))
		return
	}
	e.uint(num, uint64(n))
}

func (e *encoder) optCount(num protowire.Number, n *int) {
	if n == nil {
		return
	}
	if *n < 0 {
		e.fail(fmt.Errorf("field %d: %w (%d)", num, errNegative, *n))
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(*n))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if v {
		e.uint(num, 1)
	}
}

func (e *encoder) string(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *encoder) optString(num protowire.Number, s *string) {
	if s == nil {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, *s)
}

func (e *encoder) float(num protowire.Number, v float64) {
	if v == 0 {
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.fail(fmt.Errorf("field %d: %w", num, errBadFloat))
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, math.Float64bits(v))
}

func (e *encoder) duration(num protowire.Number, v float64) {
	if v < 0 {
		e.fail(fmt.Errorf("field %d: %w", num, errBadFloat))
		return
	}
	e.float(num, v)
}

func (e *encoder) time(num protowire.Number, t *time.Time) {
	if t == nil {
		return
	}
	var te encoder
	te.b = protowire.AppendTag(te.b, tSeconds, protowire.VarintType)
	te.b = protowire.AppendVarint(te.b, protowire.EncodeZigZag(t.Unix()))
	te.uint(tNanos, uint64(t.Nanosecond()))
	e.message(num, te.b)
}

func (e *encoder) message(num protowire.Number, body []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, body)
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// field is one decoded key/value. Scalars are in u, length-delimited
// values in b.
type field struct {
	num protowire.Number
	typ protowire.Type
	u   uint64
	b   []byte
}

// walk calls fn for every field of b in order. Groups and fixed32 values
// are consumed and passed through for the caller to ignore or reject.
func walk(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return &EncodingError{Op: "decode", Err: protowire.ParseError(n)}
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.u, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return &EncodingError{Op: "decode", Err: protowire.ParseError(n)}
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// decoder converts fields to Go values, keeping the first type error.
type decoder struct {
	err error
}

func (d *decoder) expect(f field, typ protowire.Type) bool {
	if d.err != nil {
		return false
	}
	if f.typ != typ {
		d.err = &EncodingError{Op: "decode", Err: fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)}
		return false
	}
	return true
}

func (d *decoder) uint(f field) uint64 {
	if !d.expect(f, protowire.VarintType) {
		return 0
	}
	return f.u
}

func (d *decoder) int64(f field) int64 {
	v := d.uint(f)
	if v > math.MaxInt64 {
		d.err = &EncodingError{Op: "decode", Err: fmt.Errorf("field %d: %w", f.num, errIntOverflow)}
		return 0
	}
	return int64(v)
}

func (d *decoder) int(f field) int {
	v := d.uint(f)
	if v > math.MaxInt {
		d.err = &EncodingError{Op: "decode", Err: fmt.Errorf("field %d: %w", f.num, errIntOverflow)}
		return 0
	}
	return int(v)
}

func (d *decoder) optInt(f field) *int {
	v := d.int(f)
	if d.err != nil {
		return nil
	}
	return &v
}

func (d *decoder) sint(f field) int64 {
	return protowire.DecodeZigZag(d.uint(f))
}

func (d *decoder) bool(f field) bool { return d.uint(f) != 0 }

func (d *decoder) float(f field) float64 {
	if !d.expect(f, protowire.Fixed64Type) {
		return 0
	}
	return math.Float64frombits(f.u)
}

func (d *decoder) bytes(f field) []byte {
	if !d.expect(f, protowire.BytesType) {
		return nil
	}
	return f.b
}

func (d *decoder) string(f field) string { return string(d.bytes(f)) }

func (d *decoder) optString(f field) *string {
	s := d.string(f)
	if d.err != nil {
		return nil
	}
	return &s
}

func (d *decoder) time(f field) *time.Time {
	body := d.bytes(f)
	if d.err != nil {
		return nil
	}
	var (
		sec, nsec int64
		inner     decoder
	)
	err := walk(body, func(tf field) error {
		switch tf.num {
		case tSeconds:
			sec = inner.sint(tf)
		case tNanos:
			nsec = inner.int64(tf)
		}
		return inner.err
	})
	if err != nil {
		d.err = err
		return nil
	}
	t := time.Unix(sec, nsec).UTC()
	return &t
}
