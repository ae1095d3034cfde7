// Package localization provides the user-visible notices of the chat client.
// It loads translation strings from JSON files, one per language, and falls
// back to English and then to the key itself.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
)

//go:embed locales/*.json
var bundled embed.FS

// Notice keys.
const (
	NetworkError           = "error.network"
	Forbidden              = "error.forbidden"
	NotFound               = "error.not_found"
	ServerError            = "error.server"
	SessionExpired         = "error.session_expired"
	SendFailed             = "error.send_failed"
	UploadFailed           = "error.upload_failed"
	HistoryUnavailable     = "error.history_unavailable"
	Offline                = "socket.offline"
	MediaDenied            = "call.media_denied"
	CallFailed             = "call.failed"
	CallMissed             = "call.missed"
	CallDeclined           = "call.declined"
	CallEnded              = "call.ended"
	ScreenShareUnavailable = "call.screen_share_unavailable"
	RecordingUnavailable   = "call.recording_unavailable"
	RecordingSaved         = "call.recording_saved"
	InterviewSaved         = "interview.saved"
	InterviewSaveFailed    = "interview.save_failed"
	GroupCreated           = "group.created"
	GroupCreateFailed      = "group.create_failed"
)

// Localizer manages the translations for the application.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads all translations from a directory of JSON files named
// with the language code (e.g. "en.json").
func NewLocalizer(path string) (*Localizer, error) {
	return Load(os.DirFS(path))
}

// Default returns the localizer built from the bundled translations.
func Default() *Localizer {
	sub, err := fs.Sub(bundled, "locales")
	if err != nil {
		panic(err)
	}
	l, err := Load(sub)
	if err != nil {
		panic(fmt.Sprintf("bundled translations: %v", err))
	}
	return l
}

// Load reads every *.json file at the root of fsys.
func Load(fsys fs.FS) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")

		data, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	return l, nil
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	if lang != "en" {
		if enTranslations, ok := l.translations["en"]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}

// Languages lists the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}
