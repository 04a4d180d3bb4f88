package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// placeholderFormat marks the spot a rendered shortcode is substituted back into.
const placeholderFormat = "<!-- shortcode:%d -->"

var (
	startTagPattern   = regexp.MustCompile(`{{<\s*([^\s/>]+)([^>]*)>}}`)
	endTagPattern     = regexp.MustCompile(`{{<\s*/\s*([^\s>]+)\s*>}}`)
	escapedTagPattern = regexp.MustCompile(`{{</\*(.*?)\*/>}}`)
)

// HugoParser parses Hugo-style shortcodes ({{< name param >}}).
type HugoParser struct {
}

// NewHugoParser creates a parser instance.
func NewHugoParser() *HugoParser {
	return &HugoParser{}
}

// Parse returns the list of parsed shortcodes in the content.
func (p *HugoParser) Parse(content string) ([]interfaces.ParsedShortcode, error) {
	_, shortcodes, err := p.Extract(content)
	return shortcodes, err
}

// Extract replaces shortcodes with placeholders and returns both the
// transformed content and the extracted invocations. Children of a block
// shortcode appear in the result before their parent. The escaped form
// {{</* name */>}} passes through as the literal tag {{< name >}}.
func (p *HugoParser) Extract(content string) (string, []interfaces.ParsedShortcode, error) {
	type stackEntry struct {
		name       string
		startIndex int
		params     map[string]any
	}

	var (
		result     []rune
		shortcodes []interfaces.ParsedShortcode
		stack      []stackEntry
		position   int
	)

	appendString := func(s string) {
		result = append(result, []rune(s)...)
	}

	for position < len(content) {
		escPos := patternIndex(escapedTagPattern, content, position)
		startPos := patternIndex(startTagPattern, content, position)
		endPos := patternIndex(endTagPattern, content, position)

		next := earliest(escPos, startPos, endPos)
		if next < 0 {
			appendString(content[position:])
			break
		}

		// escPos first: a spaceless escaped tag also satisfies the end
		// tag pattern, and the escape must win that overlap.
		switch next {
		case escPos:
			appendString(content[position:next])

			matches := escapedTagPattern.FindStringSubmatch(content[next:])
			appendString("{{<" + matches[1] + ">}}")
			position = next + len(matches[0])

		case startPos:
			appendString(content[position:next])

			matches := startTagPattern.FindStringSubmatch(content[next:])
			if len(matches) < 3 {
				return "", nil, fmt.Errorf("invalid shortcode start tag at position %d", next)
			}
			name := matches[1]
			rawParams := strings.TrimSpace(matches[2])
			selfClosing := strings.HasSuffix(rawParams, "/")
			if selfClosing {
				rawParams = strings.TrimSpace(strings.TrimSuffix(rawParams, "/"))
			}
			params := parseParams(rawParams)

			// A start tag without a matching close tag renders standalone.
			if !selfClosing {
				remainder := content[next+len(matches[0]):]
				endMatcher := regexp.MustCompile(fmt.Sprintf(`{{<\s*/\s*%s\s*>}}`, regexp.QuoteMeta(name)))
				selfClosing = endMatcher.FindStringIndex(remainder) == nil
			}

			if selfClosing {
				appendString(fmt.Sprintf(placeholderFormat, len(shortcodes)))
				shortcodes = append(shortcodes, interfaces.ParsedShortcode{
					Name:   name,
					Params: params,
				})
				position = next + len(matches[0])
				continue
			}

			stack = append(stack, stackEntry{
				name:       name,
				startIndex: len(result),
				params:     params,
			})
			position = next + len(matches[0])

		case endPos:
			appendString(content[position:next])

			matches := endTagPattern.FindStringSubmatch(content[next:])
			if len(matches) < 2 {
				return "", nil, fmt.Errorf("invalid shortcode end tag at position %d", next)
			}
			name := matches[1]
			if len(stack) == 0 {
				return "", nil, fmt.Errorf("unexpected closing shortcode %s at position %d", name, next)
			}

			entry := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if entry.name != name {
				return "", nil, fmt.Errorf("mismatched shortcode end tag %s, expected %s", name, entry.name)
			}

			inner := string(result[entry.startIndex:])
			result = result[:entry.startIndex]

			appendString(fmt.Sprintf(placeholderFormat, len(shortcodes)))
			shortcodes = append(shortcodes, interfaces.ParsedShortcode{
				Name:   name,
				Params: entry.params,
				Inner:  inner,
			})
			position = next + len(matches[0])
		}
	}

	if len(stack) > 0 {
		return "", nil, fmt.Errorf("unterminated shortcode %s", stack[len(stack)-1].name)
	}

	return string(result), shortcodes, nil
}

func patternIndex(pattern *regexp.Regexp, content string, position int) int {
	loc := pattern.FindStringIndex(content[position:])
	if loc == nil {
		return -1
	}
	return position + loc[0]
}

func earliest(positions ...int) int {
	next := -1
	for _, pos := range positions {
		if pos < 0 {
			continue
		}
		if next < 0 || pos < next {
			next = pos
		}
	}
	return next
}

// parseParams scans the raw parameter text of a start tag. Values may be
// quoted ("a caption with spaces" or 'single'), and bare values become
// positional parameters named param1, param2 and so on.
func parseParams(raw string) map[string]any {
	params := map[string]any{}
	positional := 0
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}

		if raw[i] == '"' || raw[i] == '\'' {
			value, next := scanValue(raw, i)
			positional++
			params["param"+strconv.Itoa(positional)] = value
			i = next
			continue
		}

		start := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' {
			i++
		}
		token := raw[start:i]

		if i < len(raw) && raw[i] == '=' {
			value, next := scanValue(raw, i+1)
			params[token] = value
			i = next
			continue
		}

		positional++
		params["param"+strconv.Itoa(positional)] = token
	}
	return params
}

func scanValue(raw string, i int) (string, int) {
	if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
		quote := raw[i]
		i++
		start := i
		for i < len(raw) && raw[i] != quote {
			i++
		}
		value := raw[start:i]
		if i < len(raw) {
			i++
		}
		return value, i
	}

	start := i
	for i < len(raw) && !isSpace(raw[i]) {
		i++
	}
	return raw[start:i], i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
