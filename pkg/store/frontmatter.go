package store

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stefanpenner/tempo/pkg/routine"
)

const frontmatterDelimiter = "---"

// ParseRoutine reads a routine file: YAML frontmatter holding the id, name
// and blocks, followed by a markdown description. Blocks are re-sorted and
// the result validated, so a bad start time fails the whole routine with
// routine.ErrInvalidScheduleData.
func ParseRoutine(content string) (*routine.Routine, error) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return nil, fmt.Errorf("%w: missing frontmatter", routine.ErrInvalidScheduleData)
	}

	rest := content[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("%w: unclosed frontmatter delimiter", routine.ErrInvalidScheduleData)
	}

	yamlContent := rest[:idx]
	body := rest[idx+len("\n"+frontmatterDelimiter):]
	body = strings.TrimLeft(body, "\n")

	var r routine.Routine
	if err := yaml.Unmarshal([]byte(yamlContent), &r); err != nil {
		return nil, fmt.Errorf("%w: parsing frontmatter YAML: %v", routine.ErrInvalidScheduleData, err)
	}

	r.Description = strings.TrimRight(body, "\n")
	routine.SortBlocks(r.Blocks)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// SerializeRoutine renders a routine back to markdown with YAML frontmatter.
func SerializeRoutine(r routine.Routine) (string, error) {
	yamlBytes, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter YAML: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(yamlBytes), "\n"))
	b.WriteString("\n")
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(r.Description)
		if !strings.HasSuffix(r.Description, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}
