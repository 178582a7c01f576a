package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kubesleuth/kubesleuth/internal/tools"
)

// ParseKind tags the outcome of parsing one model completion. Malformed
// output is an expected, recoverable case, so it is a value, not an error.
type ParseKind int

const (
	ParseFinalAnswer ParseKind = iota
	ParseAction
	ParseFailure
)

// ParsedOutput is the structured form of one model completion.
type ParsedOutput struct {
	Kind    ParseKind
	Thought string

	// Set for ParseFinalAnswer.
	FinalAnswer string

	// Set for ParseAction.
	Tool string
	Args map[string]string

	// Set for ParseFailure.
	FailureReason string
}

var (
	finalAnswerRe = regexp.MustCompile(`(?is)Final\s*Answer\s*:\s*(.*)`)
	thoughtRe     = regexp.MustCompile(`(?i)Thought\s*:\s*([^\n]+)`)
	actionRe      = regexp.MustCompile(`(?i)Action\s*:\s*([a-zA-Z][\w-]*)`)
	actionInputRe = regexp.MustCompile(`(?i)Action\s*Input\s*:\s*`)
)

// Parser extracts a final answer or a tool action from free-text model
// output. It consults the registry so a bare unstructured payload can be
// bound to the tool's primary parameter.
type Parser struct {
	registry *tools.Registry
}

// NewParser creates a parser over the given tool registry.
func NewParser(registry *tools.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse interprets one model completion. A "Final Answer:" segment wins
// when no "Action:" follows it; with neither marker present the result is
// a ParseFailure the loop can feed back to the model.
func (p *Parser) Parse(response string) ParsedOutput {
	out := ParsedOutput{Thought: extractThought(response)}

	actionMatch := actionRe.FindStringSubmatch(response)

	if matches := finalAnswerRe.FindStringSubmatch(response); len(matches) > 1 && actionMatch == nil {
		out.Kind = ParseFinalAnswer
		out.FinalAnswer = strings.TrimSpace(matches[1])
		return out
	}

	if actionMatch == nil {
		out.Kind = ParseFailure
		out.FailureReason = "output contains neither an Action nor a Final Answer"
		return out
	}

	out.Kind = ParseAction
	out.Tool = actionMatch[1]

	args, reason := p.extractArgs(response, out.Tool)
	if reason != "" {
		out.Kind = ParseFailure
		out.FailureReason = reason
		return out
	}
	out.Args = args
	return out
}

// extractThought takes an explicit "Thought:" line when present, otherwise
// the text before the first marker. The prompt ends with an open "Thought:",
// so completions often start with the thought body directly.
func extractThought(response string) string {
	if matches := thoughtRe.FindStringSubmatch(response); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	cut := len(response)
	if loc := actionRe.FindStringIndex(response); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if loc := finalAnswerRe.FindStringIndex(response); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	return strings.TrimSpace(response[:cut])
}

// extractArgs decodes the Action Input payload. Structured JSON decoding is
// attempted first; a bare or malformed payload falls back to the tool's
// primary parameter so a wasted iteration is not spent on e.g. `my-pod`
// instead of `{"pod_name": "my-pod"}`.
func (p *Parser) extractArgs(response, toolName string) (map[string]string, string) {
	loc := actionInputRe.FindStringIndex(response)
	if loc == nil {
		// No payload at all; defaults may still satisfy the tool.
		return map[string]string{}, ""
	}

	payload := response[loc[1]:]
	// The payload ends at the next marker, if the model kept going.
	if next := regexp.MustCompile(`(?i)\n(Thought|Action|Observation|Final\s*Answer)\s*:`).FindStringIndex(payload); next != nil {
		payload = payload[:next[0]]
	}
	payload = strings.TrimSpace(payload)

	if args, ok := decodeJSONObject(payload); ok {
		return args, ""
	}

	return p.bindPrimary(payload, toolName)
}

// decodeJSONObject extracts the first brace-balanced object from the
// payload and decodes it, tolerating trailing prose after the object.
func decodeJSONObject(payload string) (map[string]string, bool) {
	start := strings.Index(payload, "{")
	if start < 0 {
		return nil, false
	}

	depth := 0
	inStr := false
	escaped := false
	for i := start; i < len(payload); i++ {
		ch := payload[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inStr {
			escaped = true
			continue
		}
		if ch == '"' {
			inStr = !inStr
			continue
		}
		if inStr {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var raw map[string]interface{}
				if err := json.Unmarshal([]byte(payload[start:i+1]), &raw); err != nil {
					return nil, false
				}
				args := make(map[string]string, len(raw))
				for k, v := range raw {
					if s, ok := v.(string); ok {
						args[k] = s
					} else {
						args[k] = fmt.Sprintf("%v", v)
					}
				}
				return args, true
			}
		}
	}
	return nil, false
}

// bindPrimary binds a bare payload to the tool's single required
// parameter. Tools with several required parameters never get the
// fallback: guessing an argument order would dispatch garbage.
func (p *Parser) bindPrimary(payload, toolName string) (map[string]string, string) {
	value := strings.Trim(payload, "\"'` \n")
	if value == "" {
		return map[string]string{}, ""
	}

	tool, exists := p.registry.Get(toolName)
	if !exists {
		// Unknown tool: dispatch will report it as an error observation,
		// which is more instructive to the model than a parse failure.
		return map[string]string{}, ""
	}

	primary, ok := tools.PrimaryParam(tool)
	if !ok {
		return nil, fmt.Sprintf("Action Input for %s must be a JSON object naming its parameters", toolName)
	}
	return map[string]string{primary: value}, ""
}
