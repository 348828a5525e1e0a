package config

// SecurityConfig holds the input-validation rules. The pattern lists are
// heuristics and ship as data so they can be tightened without a code change;
// security.yaml overrides any field it sets.
type SecurityConfig struct {
	SQLPatterns       []string `yaml:"sql_patterns"`
	MarkupPatterns    []string `yaml:"markup_patterns"`
	MaxInputChars     int      `yaml:"max_input_chars"`
	MaxMessageChars   int      `yaml:"max_message_chars"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	BlockedExtensions []string `yaml:"blocked_extensions"`
}

// DefaultSQLPatterns are keyword heuristics for SQL injection attempts.
// Inline flags are part of each pattern so overrides control their own matching.
func DefaultSQLPatterns() []string {
	return []string{
		`(?i)(\bUNION\b|\bSELECT\b|\bINSERT\b|\bUPDATE\b|\bDELETE\b|\bDROP\b)`,
		`(?i)(\bOR\b|\bAND\b)\s+\d+\s*=\s*\d+`,
		`(?i)['";]\s*(\bOR\b|\bAND\b)`,
		`(?i)--\s*$`,
		`(?is)/\*.*?\*/`,
	}
}

// DefaultMarkupPatterns are script/markup fragments stripped from text after
// HTML escaping.
func DefaultMarkupPatterns() []string {
	return []string{
		`(?is)<script[^>]*>.*?</script>`,
		`(?i)javascript:`,
		`(?i)on\w+\s*=`,
		`(?is)<iframe[^>]*>.*?</iframe>`,
		`(?i)eval\s*\(`,
		`(?i)document\.`,
		`(?i)window\.`,
	}
}

func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		SQLPatterns:     DefaultSQLPatterns(),
		MarkupPatterns:  DefaultMarkupPatterns(),
		MaxInputChars:   10000,
		MaxMessageChars: 4000,
		MaxUploadBytes:  25 * 1024 * 1024,
		BlockedExtensions: []string{
			".exe", ".bat", ".cmd", ".sh", ".ps1", ".scr", ".com",
		},
	}
}
