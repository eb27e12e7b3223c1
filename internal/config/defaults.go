package config

const (
	defaultInputDir      = "processed"
	defaultOutputDir     = "sources"
	defaultMetadataFile  = "metadata.json"
	defaultStateDir      = ".cathub"
	defaultHistoryFile   = "history.db"
	defaultEncoderBinary = "ffmpeg"
	defaultVideoCodec    = "libvpx-vp9"
	defaultVideoCRF      = 35
	defaultVideoBitrate  = "0"
	defaultImageCodec    = "libwebp"
	defaultImageQuality  = 80
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

func defaultVideoExtensions() []string {
	return []string{".mp4", ".webm", ".mov", ".avi", ".mkv", ".mpeg", ".ts"}
}

func defaultImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

func defaultPassthroughExtensions() []string {
	return []string{".gif", ".webp"}
}

func defaultTags() []string {
	return []string{"funny", "cute"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:     defaultInputDir,
			OutputDir:    defaultOutputDir,
			MetadataFile: defaultMetadataFile,
			StateDir:     defaultStateDir,
		},
		Encoder: Encoder{
			Binary:       defaultEncoderBinary,
			VideoCodec:   defaultVideoCodec,
			VideoCRF:     defaultVideoCRF,
			VideoBitrate: defaultVideoBitrate,
			StripAudio:   true,
			ImageCodec:   defaultImageCodec,
			ImageQuality: defaultImageQuality,
		},
		Media: Media{
			VideoExtensions:       defaultVideoExtensions(),
			ImageExtensions:       defaultImageExtensions(),
			PassthroughExtensions: defaultPassthroughExtensions(),
		},
		Metadata: Metadata{
			DefaultTags: defaultTags(),
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
