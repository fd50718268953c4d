package judge

import (
	"fmt"
	"strings"

	"github.com/codegrid/arena/internal/apperrors"
)

// canonical language name -> judge language id
var languageIDs = map[string]int{
	"c":          50,
	"c++":        54,
	"c#":         51,
	"go":         60,
	"java":       62,
	"javascript": 63,
	"kotlin":     78,
	"php":        68,
	"python":     71,
	"ruby":       72,
	"rust":       73,
	"swift":      83,
	"typescript": 74,
}

// common aliases submitted by clients, mapped to the canonical names above
var languageAliases = map[string]string{
	"cpp":     "c++",
	"cxx":     "c++",
	"csharp":  "c#",
	"cs":      "c#",
	"golang":  "go",
	"js":      "javascript",
	"node":    "javascript",
	"nodejs":  "javascript",
	"py":      "python",
	"python3": "python",
	"ts":      "typescript",
}

// NormalizeLanguage resolves a user-supplied language name to its canonical
// name and the judge's numeric language id.
func NormalizeLanguage(lang string) (string, int, error) {
	name := strings.ToLower(strings.TrimSpace(lang))
	if alias, ok := languageAliases[name]; ok {
		name = alias
	}
	id, ok := languageIDs[name]
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedLanguage, lang)
	}
	return name, id, nil
}
