// Package i18n translates the tool's human-facing messages. The catalog
// ships English; unknown locales fall back to the English literals, so the
// pipeline never depends on a translation being present.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// message keys double as the English source text
const (
	MsgFoundFile        = "found %s (%s)"
	MsgMergedOutput     = "merged %d inputs into %s"
	MsgSkippedInputs    = "%d input(s) skipped: indices %v"
	MsgNoOutputWritten  = "no output written: %v"
	MsgWhatIfHeader     = "inputs that would be merged:"
	MsgConversionFailed = "converting %s failed"
)

var (
	mu      sync.RWMutex
	printer = message.NewPrinter(language.English)
)

func init() {
	for _, key := range []string{
		MsgFoundFile, MsgMergedOutput, MsgSkippedInputs,
		MsgNoOutputWritten, MsgWhatIfHeader, MsgConversionFailed,
	} {
		_ = message.SetString(language.English, key, key)
	}
}

// SetLocale switches the process-wide locale. Called once at startup;
// malformed identifiers keep English.
func SetLocale(identifier string) {
	tag, err := language.Parse(identifier)
	if err != nil {
		return
	}
	mu.Lock()
	printer = message.NewPrinter(tag)
	mu.Unlock()
}

// T renders a translated message.
func T(key string, args ...interface{}) string {
	mu.RLock()
	p := printer
	mu.RUnlock()
	return p.Sprintf(key, args...)
}
