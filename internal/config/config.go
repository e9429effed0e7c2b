// Package config handles editor configuration loading and management.
package config

// Config holds all editor settings.
type Config struct {
	Dats    DatsConfig    `yaml:"dats"`
	Project ProjectConfig `yaml:"project"`
	Editing EditingConfig `yaml:"editing"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DatsConfig holds game archive file paths.
type DatsConfig struct {
	CellPath   string `yaml:"cell_path"`   // world geometry archive
	PortalPath string `yaml:"portal_path"` // object/portal archive
}

// ProjectConfig holds project database settings.
type ProjectConfig struct {
	Path         string `yaml:"path"`          // SQLite project file; empty runs in memory
	AutosaveSecs int    `yaml:"autosave_secs"` // 0 disables autosave
}

// EditingConfig holds editing session settings.
type EditingConfig struct {
	UndoLimit   int     `yaml:"undo_limit"` // 0 is unbounded
	BrushRadius float32 `yaml:"brush_radius"`
	StampDir    string  `yaml:"stamp_dir"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Iteration string `yaml:"iteration"` // "current" or a number
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Dats: DatsConfig{
			CellPath:   "client_cell.dat",
			PortalPath: "client_portal.dat",
		},
		Project: ProjectConfig{
			Path:         "project.wbp",
			AutosaveSecs: 60,
		},
		Editing: EditingConfig{
			UndoLimit:   200,
			BrushRadius: 24,
			StampDir:    "stamps",
		},
		Export: ExportConfig{
			OutputDir: "export",
			Iteration: "current",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
