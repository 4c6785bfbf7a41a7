package llm

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

// Prompt names.
const (
	PromptAnalysis  = "analysis"
	PromptProblems  = "problems"
	PromptBrand     = "brand"
	PromptTechnical = "technical"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// PromptNames lists every embedded prompt.
var PromptNames = []string{PromptAnalysis, PromptProblems, PromptBrand, PromptTechnical}

// PromptTemplate returns the prompt template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	data, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// RenderPrompt fills the {{KEY}} placeholders of a prompt template.
func RenderPrompt(name string, vars map[string]string) (string, error) {
	tpl, ok := PromptTemplate(name)
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl), nil
}
