package config

const (
	defaultLinksFile       = "links.txt"
	defaultStagingDir      = "~/.local/share/artfiler/staging"
	defaultLogDir          = "~/.local/share/artfiler/logs"
	defaultMappingFile     = "~/.config/artfiler/author_mapping.json"
	defaultHistoryDB       = "~/.local/share/artfiler/history.db"
	defaultSeparator       = "_"
	defaultDownloadPostfix = "artstation"
	defaultMovePostfix     = "pixiv"
	defaultGalleryDL       = "gallery-dl"
	defaultWget            = "wget"
	defaultExiftool        = "exiftool"
	defaultKakasi          = "kakasi"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LinksFile:   defaultLinksFile,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
			MappingFile: defaultMappingFile,
			HistoryDB:   defaultHistoryDB,
		},
		Tools: Tools{
			GalleryDL: defaultGalleryDL,
			Wget:      defaultWget,
			Exiftool:  defaultExiftool,
			Kakasi:    defaultKakasi,
		},
		Behavior: Behavior{
			Separator:          defaultSeparator,
			DownloadPostfix:    defaultDownloadPostfix,
			MovePostfix:        defaultMovePostfix,
			SuppressToolOutput: true,
			ScrubMetadata:      true,
			WriteTags:          true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
