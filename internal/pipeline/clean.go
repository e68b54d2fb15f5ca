package pipeline

import (
	"regexp"
	"strings"

	"infobox/internal/util"
)

const nullPlaceholder = "NULL"

var (
	reParenNote     = regexp.MustCompile(`\(\w+\)`)
	reNonWord       = regexp.MustCompile(`\W`)
	synonymReplacer = strings.NewReplacer("{", "", "}", "", "*", "")
)

// cleanFunc cleans one raw cell. label is the row's already cleaned label.
type cleanFunc func(raw string, label *string) any

func cleanLabel(raw string) *string {
	if raw == nullPlaceholder {
		return nil
	}
	return util.StringPtr(strings.TrimSpace(reParenNote.ReplaceAllString(raw, "")))
}

func cleanName(raw string, label *string) any {
	if raw == nullPlaceholder || reNonWord.MatchString(raw) {
		if label == nil {
			return (*string)(nil)
		}
		return util.StringPtr(strings.TrimSpace(*label))
	}
	return util.StringPtr(strings.TrimSpace(raw))
}

func cleanSynonym(raw string, _ *string) any {
	if raw == nullPlaceholder {
		return []string(nil)
	}
	return strings.Split(strings.TrimSpace(synonymReplacer.Replace(raw)), "|")
}

func cleanValue(raw string, _ *string) any {
	if raw == nullPlaceholder {
		return (*string)(nil)
	}
	return util.StringPtr(strings.TrimSpace(raw))
}
