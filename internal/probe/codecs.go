package probe

import "strings"

// codecLabels maps codec identifiers from every engine (ffprobe codec_name,
// ISO-BMFF sample entry fourcc, exiftool compressor names, WAVE format tags)
// to the label shown to users.
var codecLabels = map[string]string{
	// Video
	"h264":       "H.264",
	"avc1":       "H.264",
	"avc3":       "H.264",
	"hevc":       "HEVC",
	"h265":       "HEVC",
	"hvc1":       "HEVC",
	"hev1":       "HEVC",
	"av1":        "AV1",
	"av01":       "AV1",
	"vp8":        "VP8",
	"vp9":        "VP9",
	"vp09":       "VP9",
	"mpeg4":      "MPEG-4",
	"mp4v":       "MPEG-4",
	"mpeg2video": "MPEG-2",
	"mpeg1video": "MPEG-1",
	"prores":     "ProRes",
	"apch":       "ProRes",
	"apcn":       "ProRes",
	"apcs":       "ProRes",
	"apco":       "ProRes",
	"ap4h":       "ProRes",
	"mjpeg":      "Motion JPEG",
	"jpeg":       "Motion JPEG",
	"wmv3":       "WMV",
	"theora":     "Theora",
	"dvvideo":    "DV",
	"s263":       "H.263",
	"h263":       "H.263",

	// Audio
	"aac":       "AAC",
	"mp4a":      "AAC",
	"mp3":       "MP3",
	".mp3":      "MP3",
	"ac3":       "AC-3",
	"ac-3":      "AC-3",
	"eac3":      "E-AC-3",
	"ec-3":      "E-AC-3",
	"dts":       "DTS",
	"truehd":    "TrueHD",
	"flac":      "FLAC",
	"flac_":     "FLAC",
	"alac":      "ALAC",
	"opus":      "Opus",
	"vorbis":    "Vorbis",
	"pcm_s16le": "PCM",
	"pcm_s16be": "PCM",
	"pcm_s24le": "PCM",
	"pcm_s32le": "PCM",
	"pcm_f32le": "PCM",
	"pcm_u8":    "PCM",
	"lpcm":      "PCM",
	"sowt":      "PCM",
	"twos":      "PCM",
	"in24":      "PCM",
	"fl32":      "PCM",
	"pcm":       "PCM",
	"samr":      "AMR",
	"amr_nb":    "AMR",
	"wmav2":     "WMA",
}

// CodecLabel returns the display label of a codec identifier. Unknown
// identifiers are returned trimmed and upper-cased; an empty identifier
// yields "".
func CodecLabel(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if l, ok := codecLabels[strings.ToLower(id)]; ok {
		return l
	}
	return strings.ToUpper(id)
}
