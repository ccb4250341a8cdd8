package config

import (
	"os"
	"path/filepath"
)

// FlowSourceDetails is the two-step wizard flow (source -> details).
const FlowSourceDetails = "source-details"

// FlowUploadSettings is the legacy three-step wizard flow
// (upload -> settings-a -> settings-b).
const FlowUploadSettings = "upload-settings"

// Default returns the baseline configuration used before a file is loaded.
func Default() Config {
	return Config{
		Server: Server{
			BaseURL:        "http://localhost:8787",
			OwnerCode:      "temp",
			RequestTimeout: 30,
		},
		Upload: Upload{
			DefaultContentType: "application/octet-stream",
			CloseDelayMS:       400,
		},
		Wizard: Wizard{
			Flow: FlowSourceDetails,
		},
		Languages: Languages{
			DefaultSource:  "ko",
			AllowedTargets: nil,
		},
		History: History{
			Enabled: true,
			Dir:     defaultHistoryDir(),
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
			Dir:    "",
		},
		Notifications: Notifications{
			NtfyTopic:      "",
			RequestTimeout: 10,
		},
	}
}

func defaultHistoryDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && base != "" {
		return filepath.Join(base, "dubdeck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/dubdeck"
	}
	return filepath.Join(home, ".local", "share", "dubdeck")
}
