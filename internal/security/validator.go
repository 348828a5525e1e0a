package security

import (
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/af-corp/voicechat-gateway/internal/config"
	"github.com/af-corp/voicechat-gateway/internal/httputil"
)

// Validator checks and sanitizes untrusted input against the configured
// pattern rules. It is immutable after construction; hot reloads build a
// replacement instead of mutating a live instance.
type Validator struct {
	sqlPatterns    []*regexp.Regexp
	markupPatterns []*regexp.Regexp
	blockedExt     map[string]struct{}
	maxInputChars  int
	maxMsgChars    int
	maxUploadBytes int64

	// OnSniffMiss is called when an upload fails the audio signature sniff.
	// The sniff is advisory only and never rejects.
	OnSniffMiss func(filename string)
}

// NewValidator compiles a validator from the pattern configuration.
func NewValidator(cfg *config.SecurityConfig) (*Validator, error) {
	v := &Validator{
		blockedExt:     make(map[string]struct{}, len(cfg.BlockedExtensions)),
		maxInputChars:  cfg.MaxInputChars,
		maxMsgChars:    cfg.MaxMessageChars,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	for _, p := range cfg.SQLPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile sql pattern %q: %w", p, err)
		}
		v.sqlPatterns = append(v.sqlPatterns, re)
	}
	for _, p := range cfg.MarkupPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile markup pattern %q: %w", p, err)
		}
		v.markupPatterns = append(v.markupPatterns, re)
	}
	for _, ext := range cfg.BlockedExtensions {
		v.blockedExt[strings.ToLower(ext)] = struct{}{}
	}

	return v, nil
}

// ValidateMessage validates and sanitizes chat message text. Each step is an
// independent reject point: empty text, injection heuristics, the generic
// input ceiling, then the stricter message ceiling after sanitization.
func (v *Validator) ValidateMessage(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", httputil.New(httputil.KindValidation, "Message cannot be empty")
	}

	for _, re := range v.sqlPatterns {
		if re.MatchString(text) {
			slog.Warn("potential injection attempt detected", "pattern", re.String())
			return "", httputil.New(httputil.KindValidation, "Invalid message content detected")
		}
	}

	sanitized := html.EscapeString(text)
	for _, re := range v.markupPatterns {
		sanitized = re.ReplaceAllString(sanitized, "")
	}

	if utf8.RuneCountInString(sanitized) > v.maxInputChars {
		return "", httputil.New(httputil.KindValidation,
			fmt.Sprintf("Input too long. Maximum %d characters allowed.", v.maxInputChars))
	}

	sanitized = strings.TrimSpace(sanitized)

	if utf8.RuneCountInString(sanitized) > v.maxMsgChars {
		return "", httputil.New(httputil.KindValidation,
			fmt.Sprintf("Message too long. Maximum %d characters allowed.", v.maxMsgChars))
	}

	return sanitized, nil
}

// ValidateUpload checks an uploaded file's size, filename, and extension.
// The audio signature sniff is advisory: a miss is logged, never rejected.
func (v *Validator) ValidateUpload(data []byte, filename string) error {
	if int64(len(data)) > v.maxUploadBytes {
		return httputil.New(httputil.KindValidation,
			fmt.Sprintf("File too large. Maximum size is %dMB.", v.maxUploadBytes/(1024*1024)))
	}

	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return httputil.New(httputil.KindValidation, "Invalid filename")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, blocked := v.blockedExt[ext]; blocked {
		return httputil.New(httputil.KindValidation, "File type not allowed")
	}

	if !LooksLikeAudio(data) {
		slog.Warn("upload does not match a known audio signature", "filename", filename)
		if v.OnSniffMiss != nil {
			v.OnSniffMiss(filename)
		}
	}

	return nil
}
