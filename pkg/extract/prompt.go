package extract

import (
	"fmt"
	"strings"

	"clinex/pkg/notes"
	"clinex/pkg/schema"
)

// SystemPrompt frames the model as a clinical data extractor. Medical wording
// must be preserved exactly as written in the note.
const SystemPrompt = "You are a clinical data extractor for attending physicians. " +
	"You extract structured diabetes and blood pressure data from discharge notes. " +
	"Preserve all medical terminology exactly as written in the note " +
	"(diagnoses, medications, lab names, units). " +
	"Output ONLY valid JSON matching the exact schema provided. " +
	"No markdown, no code fences, no explanation, no text outside the JSON."

const promptTemplate = `Extract the fields below from this discharge note.
Use null for a value not found in the note and [] for an empty list.
Return only a valid JSON object with exactly these keys, no markdown or extra text.

Fields:
{{fields}}

JSON skeleton to fill in:
{{skeleton}}

id to use: {{id}}

Discharge note:
---
{{text}}
---`

// BuildPrompt renders the extraction prompt for one note.
func BuildPrompt(note notes.Note, s schema.Schema) string {
	return applyTemplate(promptTemplate, map[string]string{
		"fields":   describeFields(s),
		"skeleton": skeleton(s),
		"id":       note.ID,
		"text":     note.Text,
	})
}

func describeFields(s schema.Schema) string {
	var builder strings.Builder
	for _, field := range s.Fields {
		builder.WriteString("- ")
		builder.WriteString(field.Name)
		builder.WriteString(" (")
		builder.WriteString(string(field.Kind))
		builder.WriteString(")")
		if field.Description != "" {
			builder.WriteString(": ")
			builder.WriteString(field.Description)
		}
		if len(field.Values) > 0 {
			builder.WriteString(fmt.Sprintf(" Allowed values: %s.", strings.Join(field.Values, ", ")))
		}
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}

func skeleton(s schema.Schema) string {
	var builder strings.Builder
	builder.WriteString("{\n")
	builder.WriteString("  \"id\": \"\",\n")
	for i, field := range s.Fields {
		builder.WriteString("  \"")
		builder.WriteString(field.Name)
		builder.WriteString("\": ")
		switch field.Kind {
		case schema.KindList:
			builder.WriteString("[]")
		default:
			builder.WriteString("null")
		}
		if i < len(s.Fields)-1 {
			builder.WriteString(",")
		}
		builder.WriteString("\n")
	}
	builder.WriteString("}")
	return builder.String()
}

func applyTemplate(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
