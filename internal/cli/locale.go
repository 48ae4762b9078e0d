package cli

import (
	"fmt"
	"strings"
)

// Locale is corefuzz's bilingual (en/ja) message table, generalized from
// cmd/orizon-fuzz's inline getLocale closure so both cmd/corefuzz and any
// future entry point share one copy.
type Locale struct {
	Done    func() string
	Cov     func(n int) string
	Kept    func(total int) string
	Failure func(detail string) string
}

// GetLocale returns the message table for lang ("ja"/"jp"/"japanese" select
// Japanese; anything else, including the empty string, selects English).
func GetLocale(lang string) Locale {
	switch strings.ToLower(lang) {
	case "ja", "jp", "japanese":
		return Locale{
			Done:    func() string { return "ファズ終了" },
			Cov:     func(n int) string { return fmt.Sprintf("カバレッジユニーク特徴数: %d", n) },
			Kept:    func(total int) string { return fmt.Sprintf("保持された入力数: %d", total) },
			Failure: func(detail string) string { return fmt.Sprintf("失敗を検出: %s", detail) },
		}
	default:
		return Locale{
			Done:    func() string { return "Fuzzing finished" },
			Cov:     func(n int) string { return fmt.Sprintf("Coverage unique features: %d", n) },
			Kept:    func(total int) string { return fmt.Sprintf("Inputs kept: %d", total) },
			Failure: func(detail string) string { return fmt.Sprintf("Failure detected: %s", detail) },
		}
	}
}
